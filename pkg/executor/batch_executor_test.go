package executor

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func itoa(i int) string { return strconv.Itoa(i) }

func TestExecuteCountsAndConcurrency(t *testing.T) {
	e := NewBatchExecutor(Config{Concurrency: 3, Delay: time.Millisecond})

	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	var running, peak int32
	result := Execute(context.Background(), e, "测试", items, itoa, func(_ context.Context, i int) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		if i%4 == 0 {
			return errors.New("失败")
		}
		return nil
	})

	if result.TotalCount != 20 || result.SuccessCount != 15 || result.FailCount != 5 {
		t.Errorf("summary = %s, want 20/15/5", result.FormatResultSummary())
	}
	if len(result.Results) != 20 {
		t.Errorf("len(Results) = %d, want 20", len(result.Results))
	}
	if got := len(result.Failed()); got != 5 {
		t.Errorf("len(Failed()) = %d, want 5", got)
	}
	if p := atomic.LoadInt32(&peak); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
}

func TestExecutePanicIsolated(t *testing.T) {
	e := NewBatchExecutor(Config{Concurrency: 2, Delay: -1})
	result := Execute(context.Background(), e, "panic", []int{1, 2, 3}, itoa, func(_ context.Context, i int) error {
		if i == 2 {
			panic("boom")
		}
		return nil
	})
	if result.SuccessCount != 2 || result.FailCount != 1 {
		t.Errorf("summary = %s, want 2 success 1 failed", result.FormatResultSummary())
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	e := NewBatchExecutor(Config{Concurrency: 1, Delay: -1})
	result := Execute(ctx, e, "取消", []int{1, 2, 3}, itoa, func(context.Context, int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	if result.TotalCount != 3 || result.SuccessCount+result.FailCount != 3 {
		t.Errorf("summary = %s, every unit must be accounted for", result.FormatResultSummary())
	}
	if result.SuccessCount != int(atomic.LoadInt32(&calls)) {
		t.Errorf("success = %d, calls = %d", result.SuccessCount, calls)
	}
}

func TestExecuteEmpty(t *testing.T) {
	result := Execute(context.Background(), NewBatchExecutor(Config{}), "空", nil, itoa, func(context.Context, int) error {
		t.Fatal("fn must not be called")
		return nil
	})
	if result.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0", result.TotalCount)
	}
}

func TestNewBatchExecutorDefaults(t *testing.T) {
	e := NewBatchExecutor(Config{})
	if e.concurrency != DefaultConcurrency || e.delay != DefaultDelay || e.progressEvery != DefaultProgressEvery {
		t.Errorf("defaults = %d/%v/%d", e.concurrency, e.delay, e.progressEvery)
	}
}
