package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck 健康检查
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags 健康检查
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(details func() map[string]interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"message": "video-api service is running",
		}
		if details != nil {
			body["services"] = details()
		}
		c.JSON(http.StatusOK, body)
	}
}
