package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Aijiaobin/video-api/internal/application/services/metadata"
	"github.com/Aijiaobin/video-api/internal/domain/entities"
	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
	httputil "github.com/Aijiaobin/video-api/pkg/utils/http"
)

// MetadataHandler 元数据查询接口
type MetadataHandler struct {
	resolver *metadata.Resolver
}

// NewMetadataHandler 创建元数据处理器
func NewMetadataHandler(resolver *metadata.Resolver) *MetadataHandler {
	return &MetadataHandler{resolver: resolver}
}

// Search 按标题查询，先查本地缓存
// @Summary 元数据搜索
// @Tags 元数据
// @Produce json
// @Param q query string true "标题"
// @Param type query string false "movie 或 tv" default(movie)
// @Param year query int false "年份"
// @Router /metadata/search [get]
func (h *MetadataHandler) Search(c *gin.Context) {
	title := c.Query("q")
	if title == "" {
		_ = c.Error(apperrors.New(apperrors.ErrorCodeInvalidRequest, "query parameter q is required"))
		return
	}
	var year *int
	if y := queryInt(c, "year", 0); y > 0 {
		year = &y
	}

	rec, err := h.resolver.ResolveByQuery(c.Request.Context(), title, year, queryMediaType(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respondRecord(c, rec)
}

// Get 按 TMDB ID 查询
// @Summary 元数据详情
// @Tags 元数据
// @Produce json
// @Param tmdb_id path int true "TMDB ID"
// @Param type query string false "movie 或 tv" default(movie)
// @Router /metadata/{tmdb_id} [get]
func (h *MetadataHandler) Get(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	h.respondRecord(c, rec)
}

// Seasons 剧集的季列表
func (h *MetadataHandler) Seasons(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	if rec == nil {
		h.respondRecord(c, nil)
		return
	}
	seasons, err := h.resolver.Seasons(c.Request.Context(), rec)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if seasons == nil {
		seasons = []entities.Season{}
	}
	httputil.Success(c, seasons)
}

// Episodes 某一季的分集
func (h *MetadataHandler) Episodes(c *gin.Context) {
	rec, ok := h.lookup(c)
	if !ok {
		return
	}
	seasonNumber, ok := pathInt64(c, "season_number")
	if !ok {
		return
	}
	if rec == nil {
		h.respondRecord(c, nil)
		return
	}
	episodes, err := h.resolver.Episodes(c.Request.Context(), rec, int(seasonNumber))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if episodes == nil {
		_ = c.Error(apperrors.New(apperrors.ErrorCodeNotFound, "season not found").WithDetail("season_number", seasonNumber))
		return
	}
	httputil.Success(c, episodes)
}

func (h *MetadataHandler) lookup(c *gin.Context) (*entities.MetadataRecord, bool) {
	tmdbID, ok := pathInt64(c, "tmdb_id")
	if !ok {
		return nil, false
	}
	rec, err := h.resolver.ResolveByID(c.Request.Context(), int(tmdbID), queryMediaType(c))
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return rec, true
}

func (h *MetadataHandler) respondRecord(c *gin.Context, rec *entities.MetadataRecord) {
	if rec == nil {
		_ = c.Error(apperrors.New(apperrors.ErrorCodeNotFound, "no matching metadata"))
		return
	}
	httputil.Success(c, rec)
}
