package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Aijiaobin/video-api/internal/application/services/ingest"
	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/repositories"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
	httputil "github.com/Aijiaobin/video-api/pkg/utils/http"
)

// ShareHandler 分享接口 - 纯协议转换层
type ShareHandler struct {
	ingest *ingest.Service
}

// NewShareHandler 创建分享处理器
func NewShareHandler(svc *ingest.Service) *ShareHandler {
	return &ShareHandler{ingest: svc}
}

// CreateShareRequest 提交分享请求
type CreateShareRequest struct {
	DriveType string `json:"drive_type"`
	ShareURL  string `json:"share_url" binding:"required"`
	Password  string `json:"password"`
}

// OverrideRequest 人工修正请求，字段为空表示清除
type OverrideRequest struct {
	ManualTitle  string `json:"manual_title"`
	ManualTMDBID *int   `json:"manual_tmdb_id"`
}

// CreateShare 提交分享链接
// @Summary 提交分享链接
// @Description 规范化后登记分享；重复提交返回已有记录。sync=true 时同步完成解析
// @Tags 分享
// @Accept json
// @Produce json
// @Param request body CreateShareRequest true "分享链接"
// @Param sync query bool false "同步解析"
// @Router /shares [post]
func (h *ShareHandler) CreateShare(c *gin.Context) {
	var req CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrorCodeInvalidRequest, "invalid request body", err))
		return
	}

	shareReq := entities.ShareRequest{DriveType: req.DriveType, ShareURL: req.ShareURL, Password: req.Password}

	var (
		share *entities.Share
		err   error
	)
	if sync, _ := strconv.ParseBool(c.Query("sync")); sync {
		share, err = h.ingest.IngestShare(c.Request.Context(), shareReq)
	} else {
		share, err = h.ingest.SubmitAsync(c.Request.Context(), shareReq)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.Success(c, share)
}

// ListShares 分享列表
// @Summary 分享列表
// @Tags 分享
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Param share_type query string false "tv, movie, movie_collection"
// @Param keyword query string false "标题关键字"
// @Router /shares [get]
func (h *ShareHandler) ListShares(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	filter := repositories.ShareFilter{
		Kind:    valueobjects.ShareKind(c.Query("share_type")),
		Keyword: c.Query("keyword"),
	}
	if filter.Kind != "" && !filter.Kind.IsValid() {
		_ = c.Error(apperrors.New(apperrors.ErrorCodeInvalidRequest, "unknown share_type").WithDetail("share_type", filter.Kind))
		return
	}

	shares, total, err := h.ingest.ListShares(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	httputil.Page(c, shares, total, page, pageSize)
}

// GetShare 分享详情，包含分享人、文件列表和元数据
// @Summary 分享详情
// @Tags 分享
// @Produce json
// @Param id path int true "分享ID"
// @Router /shares/{id} [get]
func (h *ShareHandler) GetShare(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	share, err := h.ingest.ShareDetail(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.Success(c, share)
}

// SetOverride 设置人工标题或 TMDB ID 并重新解析
func (h *ShareHandler) SetOverride(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrorCodeInvalidRequest, "invalid request body", err))
		return
	}
	share, err := h.ingest.SetOverride(c.Request.Context(), id, req.ManualTitle, req.ManualTMDBID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.Success(c, share)
}

// Scrape 重新解析元数据
func (h *ShareHandler) Scrape(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	share, err := h.ingest.Rescrape(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.Success(c, share)
}

// Save 客户端转存成功后调用
func (h *ShareHandler) Save(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	count, err := h.ingest.RecordSave(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.Success(c, gin.H{"save_count": count})
}

// DeleteShare 软删除分享
func (h *ShareHandler) DeleteShare(c *gin.Context) {
	id, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	if err := h.ingest.DeleteShare(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	httputil.Success(c, gin.H{"id": id})
}
