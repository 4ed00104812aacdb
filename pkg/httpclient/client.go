package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxErrorBody 错误信息中保留的响应体长度
const maxErrorBody = 512

// Options HTTP请求选项
type Options struct {
	// 超时时间，默认30秒（仅在未指定Client时生效）
	Timeout time.Duration
	// 请求头
	Headers map[string]string
	// 查询参数，会合并到URL已有的参数中
	Query url.Values
	// 上下文，用于取消请求
	Context context.Context
	// HTTP客户端，如果为nil则使用默认客户端
	Client *http.Client
}

// StatusError 非2xx响应
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP request failed with status %d: %s", e.StatusCode, e.Body)
}

// DecodeError 响应体无法解析为JSON
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "failed to unmarshal response body: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError 判断错误链中是否包含解码错误
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// DefaultOptions 返回默认选项
func DefaultOptions() *Options {
	return &Options{
		Timeout: 30 * time.Second,
		Headers: make(map[string]string),
		Context: context.Background(),
	}
}

// WithTimeout 设置超时时间
func (o *Options) WithTimeout(timeout time.Duration) *Options {
	o.Timeout = timeout
	return o
}

// WithHeader 添加请求头
func (o *Options) WithHeader(key, value string) *Options {
	if o.Headers == nil {
		o.Headers = make(map[string]string)
	}
	o.Headers[key] = value
	return o
}

// WithQuery 设置查询参数
func (o *Options) WithQuery(params url.Values) *Options {
	o.Query = params
	return o
}

// WithContext 设置上下文
func (o *Options) WithContext(ctx context.Context) *Options {
	o.Context = ctx
	return o
}

// WithClient 设置HTTP客户端
func (o *Options) WithClient(client *http.Client) *Options {
	o.Client = client
	return o
}

// DoJSONRequest 执行JSON请求，统一处理JSON编码/解码和HTTP请求
func DoJSONRequest(method, rawURL string, reqBody, respBody any, opts ...*Options) error {
	options := DefaultOptions()
	if len(opts) > 0 && opts[0] != nil {
		options = opts[0]
	}
	ctx := options.Context
	if ctx == nil {
		ctx = context.Background()
	}

	client := options.Client
	if client == nil {
		client = &http.Client{Timeout: options.Timeout}
	}

	if len(options.Query) > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
		q := u.Query()
		for k, vs := range options.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		rawURL = u.String()
	}

	var reqReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range options.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	if respBody != nil {
		if err := json.Unmarshal(body, respBody); err != nil {
			return &DecodeError{Err: err}
		}
	}

	return nil
}

// GetJSON 发送GET JSON请求的便捷方法
func GetJSON(rawURL string, respBody any, opts ...*Options) error {
	return DoJSONRequest(http.MethodGet, rawURL, nil, respBody, opts...)
}

// PostJSON 发送POST JSON请求的便捷方法
func PostJSON(rawURL string, reqBody, respBody any, opts ...*Options) error {
	return DoJSONRequest(http.MethodPost, rawURL, reqBody, respBody, opts...)
}
