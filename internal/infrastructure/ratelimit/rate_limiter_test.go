package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_Basic(t *testing.T) {
	limiter := NewRateLimiter(2)

	if qps := limiter.GetQPS(); qps != 2 {
		t.Errorf("expected QPS 2, got %d", qps)
	}
	if !limiter.Allow() {
		t.Error("first request should be allowed")
	}
}

func TestRateLimiter_NoLimit(t *testing.T) {
	limiter := NewRateLimiter(0)

	if qps := limiter.GetQPS(); qps != 0 {
		t.Errorf("expected QPS 0 (unlimited), got %d", qps)
	}
	for i := 0; i < 100; i++ {
		if !limiter.Allow() {
			t.Fatal("unlimited limiter should allow all requests")
		}
	}
}

func TestRateLimiter_SetQPS(t *testing.T) {
	limiter := NewRateLimiter(10)

	limiter.SetQPS(20)
	if qps := limiter.GetQPS(); qps != 20 {
		t.Errorf("expected QPS 20 after SetQPS, got %d", qps)
	}

	limiter.SetQPS(0)
	if qps := limiter.GetQPS(); qps != 0 {
		t.Errorf("expected QPS 0 after SetQPS(0), got %d", qps)
	}
}

func TestRateLimiter_NilIsUnlimited(t *testing.T) {
	var limiter *RateLimiter
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter Wait returned error: %v", err)
	}
	if !limiter.Allow() {
		t.Fatal("nil limiter should allow")
	}
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	limiter := NewRateLimiter(1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first wait should not error: %v", err)
	}
	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("second wait should fail once the context deadline is shorter than the refill interval")
	}
}
