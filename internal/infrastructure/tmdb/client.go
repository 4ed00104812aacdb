package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/Aijiaobin/video-api/internal/infrastructure/ratelimit"
	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
	httputil "github.com/Aijiaobin/video-api/pkg/httpclient"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	DefaultLanguage     = "zh-CN"
	DefaultTimeout      = 10 * time.Second
	DefaultQPS          = 40
)

// Config 客户端配置
type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	QPS          int
	Timeout      time.Duration
}

type Client struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string
	Language     string
	httpClient   *http.Client
	rateLimiter  *ratelimit.RateLimiter
}

// NewClient 创建TMDB客户端，API Key 为空时读取 TMDB_API_KEY
func NewClient(cfg Config) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("TMDB_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.QPS == 0 {
		cfg.QPS = DefaultQPS
	}

	return &Client{
		BaseURL:      cfg.BaseURL,
		ImageBaseURL: cfg.ImageBaseURL,
		APIKey:       cfg.APIKey,
		Language:     cfg.Language,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: ratelimit.NewRateLimiter(cfg.QPS),
	}
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, params url.Values, result interface{}) error {
	if c.APIKey == "" {
		return apperrors.New(apperrors.ErrorCodeInvalidRequest, "TMDB API key is not set")
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrorCodeTransport, "rate limit wait interrupted", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.APIKey)

	lang := c.Language
	if lang != "" {
		params.Set("language", lang)
	}

	logger.Debug("TMDB API Request",
		"method", method,
		"endpoint", endpoint,
		"language", lang)

	opts := httputil.DefaultOptions().
		WithContext(ctx).
		WithClient(c.httpClient).
		WithQuery(params)

	err := httputil.DoJSONRequest(method, c.BaseURL+endpoint, nil, result, opts)
	if err != nil {
		logger.Error("TMDB API Request failed", "endpoint", endpoint, "error", err)
		if httputil.IsDecodeError(err) {
			return apperrors.Wrap(apperrors.ErrorCodeDecode, "invalid TMDB response", err)
		}
		return apperrors.Wrap(apperrors.ErrorCodeTransport, "TMDB request failed", err)
	}
	return nil
}

func (c *Client) SearchMovie(ctx context.Context, query string, year int) (*SearchMovieResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var resp SearchMovieResponse
	if err := c.makeRequest(ctx, http.MethodGet, "/search/movie", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search movie: %w", err)
	}

	return &resp, nil
}

func (c *Client) SearchTV(ctx context.Context, query string, year int) (*SearchTVResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}

	var resp SearchTVResponse
	if err := c.makeRequest(ctx, http.MethodGet, "/search/tv", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search TV: %w", err)
	}

	return &resp, nil
}

func (c *Client) GetMovieDetails(ctx context.Context, movieID int) (*MovieDetails, error) {
	endpoint := fmt.Sprintf("/movie/%d", movieID)

	var details MovieDetails
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, &details); err != nil {
		return nil, fmt.Errorf("failed to get movie details: %w", err)
	}

	return &details, nil
}

func (c *Client) GetTVDetails(ctx context.Context, tvID int) (*TVDetails, error) {
	endpoint := fmt.Sprintf("/tv/%d", tvID)

	var details TVDetails
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, &details); err != nil {
		return nil, fmt.Errorf("failed to get TV details: %w", err)
	}

	return &details, nil
}

func (c *Client) GetSeasonDetails(ctx context.Context, tvID, seasonNumber int) (*Season, error) {
	endpoint := fmt.Sprintf("/tv/%d/season/%d", tvID, seasonNumber)

	var season Season
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, &season); err != nil {
		return nil, fmt.Errorf("failed to get season details: %w", err)
	}

	return &season, nil
}
