package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
)

// pathInt64 解析正整数路径参数
func pathInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		_ = c.Error(apperrors.New(apperrors.ErrorCodeInvalidRequest, "invalid path parameter").WithDetail(name, c.Param(name)))
		return 0, false
	}
	return v, true
}

// queryInt 可选整数查询参数，缺省或无法解析时返回 def
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// queryMediaType type=tv 查剧集，其余按电影处理
func queryMediaType(c *gin.Context) valueobjects.MediaType {
	return valueobjects.NewMediaType(c.DefaultQuery("type", string(valueobjects.MediaTypeMovie)))
}
