package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter 远程服务QPS限制器（令牌桶，桶大小等于QPS）
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter 创建新的速率限制器
// qps: 每秒允许的请求数，如果为0或负数则不限制
func NewRateLimiter(qps int) *RateLimiter {
	if qps <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(qps), qps)}
}

// Wait 阻塞直到获得令牌；nil 限制器视为不限速
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

// Allow 检查是否允许当前请求，不阻塞
func (r *RateLimiter) Allow() bool {
	if r == nil {
		return true
	}
	return r.limiter.Allow()
}

// SetQPS 动态设置QPS限制
func (r *RateLimiter) SetQPS(qps int) {
	if qps <= 0 {
		r.limiter.SetLimit(rate.Inf)
		r.limiter.SetBurst(1)
		return
	}
	r.limiter.SetLimit(rate.Limit(qps))
	r.limiter.SetBurst(qps)
}

// GetQPS 获取当前QPS限制，0 表示不限制
func (r *RateLimiter) GetQPS() int {
	limit := r.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return int(limit)
}
