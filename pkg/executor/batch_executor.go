package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Aijiaobin/video-api/pkg/logger"
)

const (
	DefaultConcurrency   = 5
	DefaultDelay         = 200 * time.Millisecond
	DefaultProgressEvery = 50
)

// Config 批量执行参数，零值使用默认值；Delay 为负表示不等待
type Config struct {
	Concurrency   int
	Delay         time.Duration
	ProgressEvery int
}

// BatchExecutor 批量执行器 - 信号量限制并发，单元之间互不影响，失败不重试
type BatchExecutor struct {
	concurrency   int
	delay         time.Duration
	progressEvery int
}

// NewBatchExecutor 创建批量执行器
func NewBatchExecutor(cfg Config) *BatchExecutor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Delay == 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = DefaultProgressEvery
	}
	return &BatchExecutor{
		concurrency:   cfg.Concurrency,
		delay:         cfg.Delay,
		progressEvery: cfg.ProgressEvery,
	}
}

// UnitResult 单个单元的结果
type UnitResult struct {
	Name string
	Err  error
}

// BatchResult 批量执行结果
type BatchResult struct {
	TotalCount   int
	SuccessCount int
	FailCount    int
	Results      []UnitResult
}

// Failed 失败的单元
func (r *BatchResult) Failed() []UnitResult {
	var out []UnitResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// FormatResultSummary 格式化结果摘要
func (r *BatchResult) FormatResultSummary() string {
	return fmt.Sprintf("Total: %d, Success: %d, Failed: %d",
		r.TotalCount, r.SuccessCount, r.FailCount)
}

// Execute 并发执行 fn；context 取消后尚未开始的单元记为失败
func Execute[T any](ctx context.Context, e *BatchExecutor, label string, items []T, name func(T) string, fn func(context.Context, T) error) *BatchResult {
	result := &BatchResult{
		TotalCount: len(items),
		Results:    make([]UnitResult, 0, len(items)),
	}
	if len(items) == 0 {
		return result
	}

	logger.Info("批量任务开始", "task", label, "total", len(items), "concurrency", e.concurrency)
	start := time.Now()

	// 使用channel控制并发
	semaphore := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	record := func(res UnitResult) {
		mu.Lock()
		defer mu.Unlock()
		result.Results = append(result.Results, res)
		if res.Err == nil {
			result.SuccessCount++
		} else {
			result.FailCount++
		}
		if done := len(result.Results); done%e.progressEvery == 0 && done < result.TotalCount {
			logger.Info("批量任务进度", "task", label, "done", done, "total", result.TotalCount,
				"success", result.SuccessCount, "failed", result.FailCount)
		}
	}

	for _, item := range items {
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			record(UnitResult{Name: name(item), Err: ctx.Err()})
			continue
		}

		wg.Add(1)
		go func(it T) {
			defer wg.Done()
			defer func() { <-semaphore }()

			err := runUnit(ctx, it, fn)
			if err != nil {
				logger.Warn("批量任务单元失败", "task", label, "unit", name(it), "error", err)
			}
			record(UnitResult{Name: name(it), Err: err})

			if e.delay > 0 {
				select {
				case <-time.After(e.delay):
				case <-ctx.Done():
				}
			}
		}(item)
	}

	wg.Wait()
	logger.Info("批量任务完成", "task", label, "total", result.TotalCount,
		"success", result.SuccessCount, "failed", result.FailCount, "elapsed", time.Since(start).Round(time.Millisecond))
	return result
}

// runUnit 单元 panic 视为失败，不影响其他单元
func runUnit[T any](ctx context.Context, item T, fn func(context.Context, T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, item)
}
