// Package tianyi 天翼云盘分享接口客户端
package tianyi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/infrastructure/ratelimit"
	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
	httputil "github.com/Aijiaobin/video-api/pkg/httpclient"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

const (
	DefaultBaseURL  = "https://cloud.189.cn"
	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 1000
	DefaultQPS      = 5

	// maxPages 单个目录最多翻页次数
	maxPages = 50
)

const (
	shareInfoEndpoint = "/api/open/share/getShareInfoByCodeV2.action"
	checkCodeEndpoint = "/api/open/share/checkAccessCode.action"
	listShareEndpoint = "/api/open/share/listShareDir.action"
	acceptHeaderValue = "application/json;charset=UTF-8"
)

// Config 客户端配置
type Config struct {
	BaseURL  string
	QPS      int
	Timeout  time.Duration
	PageSize int
}

// Client 天翼云盘客户端
type Client struct {
	BaseURL     string
	PageSize    int
	httpClient  *http.Client
	rateLimiter *ratelimit.RateLimiter
	newNonce    func() string
}

// NewClient 创建天翼云盘客户端，零值字段使用默认值
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.QPS == 0 {
		cfg.QPS = DefaultQPS
	}

	return &Client{
		BaseURL:  cfg.BaseURL,
		PageSize: cfg.PageSize,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: ratelimit.NewRateLimiter(cfg.QPS),
		newNonce:    uuid.NewString,
	}
}

// makeRequest 发起GET请求并检查 res_code
func (c *Client) makeRequest(ctx context.Context, endpoint string, params url.Values) (payload, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorCodeTransport, "rate limit wait interrupted", err)
	}

	opts := httputil.DefaultOptions().
		WithContext(ctx).
		WithClient(c.httpClient).
		WithQuery(params).
		WithHeader("Accept", acceptHeaderValue).
		WithHeader("Referer", c.BaseURL+"/")

	var raw json.RawMessage
	if err := httputil.GetJSON(c.BaseURL+endpoint, &raw, opts); err != nil {
		logger.Warn("天翼接口请求失败", "endpoint", endpoint, "error", err)
		if httputil.IsDecodeError(err) {
			return nil, apperrors.Wrap(apperrors.ErrorCodeDecode, "invalid response from "+endpoint, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrorCodeTransport, "request "+endpoint+" failed", err)
	}

	// 大整数ID超出 float64 精度，按 json.Number 保留原文
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var p payload
	if err := dec.Decode(&p); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorCodeDecode, "unexpected response shape from "+endpoint, err)
	}
	if p == nil {
		return nil, apperrors.New(apperrors.ErrorCodeDecode, "empty response from "+endpoint)
	}

	if code, msg, ok := p.resultCode(); !ok {
		logger.Warn("天翼接口返回错误", "endpoint", endpoint, "res_code", code, "res_message", msg)
		return nil, apperrors.New(apperrors.ErrorCodeRemoteRejected, fmt.Sprintf("%s: %s", code, msg)).
			WithDetail("endpoint", endpoint)
	}
	return p, nil
}

// GetShareInfo 根据分享码获取分享信息
func (c *Client) GetShareInfo(ctx context.Context, shareCode string) (*entities.RemoteShare, error) {
	params := url.Values{}
	params.Set("shareCode", shareCode)

	p, err := c.makeRequest(ctx, shareInfoEndpoint, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get share info: %w", err)
	}

	share := p.toRemoteShare(shareCode)
	logger.Debug("获取分享信息成功",
		"share_code", shareCode,
		"share_id", share.ShareID,
		"is_folder", share.IsFolder,
		"share_mode", share.ShareMode)
	return share, nil
}

// CheckAccessCode 校验访问码，返回加密分享真正的 shareId
func (c *Client) CheckAccessCode(ctx context.Context, shareCode, accessCode string) (string, error) {
	params := url.Values{}
	params.Set("shareCode", shareCode)
	params.Set("accessCode", accessCode)
	params.Set("uuid", c.newNonce())

	p, err := c.makeRequest(ctx, checkCodeEndpoint, params)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrorCodeRemoteRejected) {
			return "", apperrors.Wrap(apperrors.ErrorCodeAuthFailed, "access code rejected", err)
		}
		return "", fmt.Errorf("failed to check access code: %w", err)
	}

	shareID := p.str("shareId")
	if shareID == "" {
		return "", apperrors.New(apperrors.ErrorCodeAuthFailed, "access code check returned no share id")
	}
	return shareID, nil
}

// ListDir 列出分享中某个目录的全部条目，自动翻页
func (c *Client) ListDir(ctx context.Context, share *entities.RemoteShare, folderID string) ([]entities.RemoteEntry, error) {
	var entries []entities.RemoteEntry

	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		params := url.Values{}
		params.Set("shareId", share.ShareID)
		params.Set("fileId", folderID)
		params.Set("isFolder", "true")
		params.Set("orderBy", "lastOpTime")
		params.Set("descending", "true")
		params.Set("shareMode", strconv.Itoa(share.ShareMode))
		params.Set("pageNum", strconv.Itoa(pageNum))
		params.Set("pageSize", strconv.Itoa(c.PageSize))
		if share.AccessCode != "" {
			params.Set("accessCode", share.AccessCode)
		}

		p, err := c.makeRequest(ctx, listShareEndpoint, params)
		if err != nil {
			return nil, fmt.Errorf("failed to list share dir %s: %w", folderID, err)
		}

		page := p.toDirPage()
		entries = append(entries, page.Entries...)

		if page.Returned < c.PageSize {
			break
		}
		if page.Count >= 0 && len(entries) >= page.Count {
			break
		}
	}

	logger.Debug("列出分享目录", "share_id", share.ShareID, "folder_id", folderID, "count", len(entries))
	return entries, nil
}
