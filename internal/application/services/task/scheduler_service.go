// Package task 按 cron 表达式定时运行批量解析和刮削
package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/infrastructure/repository"
	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
	"github.com/Aijiaobin/video-api/pkg/executor"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

// BatchRunner 批处理入口，由 ingest.Service 实现
type BatchRunner interface {
	ParseAll(ctx context.Context, exec *executor.BatchExecutor, limit int) (*executor.BatchResult, error)
	ScrapeAll(ctx context.Context, exec *executor.BatchExecutor, limit int) (*executor.BatchResult, error)
}

type SchedulerService struct {
	cron     *cron.Cron
	taskRepo *repository.TaskRepository
	runner   BatchRunner
	exec     *executor.BatchExecutor
	jobs     map[string]cron.EntryID
	inflight map[string]bool
	mu       sync.RWMutex
	running  bool

	// ctx 在 Stop 时取消，正在执行的批处理随之结束
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSchedulerService(taskRepo *repository.TaskRepository, runner BatchRunner, exec *executor.BatchExecutor) *SchedulerService {
	ctx, cancel := context.WithCancel(context.Background())
	return &SchedulerService{
		cron:     cron.New(), // 使用标准5字段格式（分 时 日 月 周）
		taskRepo: taskRepo,
		runner:   runner,
		exec:     exec,
		jobs:     make(map[string]cron.EntryID),
		inflight: make(map[string]bool),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Sync 登记配置中的任务，cron 表达式无效的任务被拒绝；配置中已移除的任务一并删除
func (s *SchedulerService) Sync(defs []*entities.ScheduledTask) error {
	names := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if _, err := cron.ParseStandard(def.Cron); err != nil {
			return apperrors.Wrap(apperrors.ErrorCodeInvalidRequest, "invalid cron expression", err).
				WithDetail("task", def.Name)
		}
		if _, err := s.taskRepo.Sync(def); err != nil {
			return fmt.Errorf("sync task %q: %w", def.Name, err)
		}
		names[def.Name] = struct{}{}
	}

	existing, err := s.taskRepo.GetAll()
	if err != nil {
		return err
	}
	for _, task := range existing {
		if _, ok := names[task.Name]; ok {
			continue
		}
		if err := s.taskRepo.Delete(task.ID); err != nil {
			return fmt.Errorf("delete task %q: %w", task.Name, err)
		}
		logger.Info("Removed task no longer in config", "task", task.Name)
	}
	return nil
}

// Start 启动调度器
func (s *SchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	// 加载所有启用的任务
	tasks, err := s.taskRepo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	for _, task := range tasks {
		if task.Enabled {
			if err := s.scheduleTask(task); err != nil {
				logger.Error("Failed to schedule task", "task", task.Name, "error", err)
			}
		}
	}

	s.cron.Start()
	s.running = true
	logger.Info("Scheduler service started", "jobs", len(s.jobs))

	return nil
}

// Stop 停止调度器并等待正在执行的任务退出
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.cancel()
	s.wg.Wait()
	logger.Info("Scheduler service stopped")
}

// GetTask 获取任务
func (s *SchedulerService) GetTask(taskID string) (*entities.ScheduledTask, error) {
	return s.taskRepo.GetByID(taskID)
}

// GetAllTasks 获取所有任务
func (s *SchedulerService) GetAllTasks() ([]*entities.ScheduledTask, error) {
	return s.taskRepo.GetAll()
}

// scheduleTask 调度单个任务（内部方法，需要加锁）
func (s *SchedulerService) scheduleTask(task *entities.ScheduledTask) error {
	taskID := task.ID
	entryID, err := s.cron.AddFunc(task.Cron, func() {
		s.wg.Add(1)
		defer s.wg.Done()
		if _, err := s.RunTask(s.ctx, taskID); err != nil && !apperrors.HasCode(err, apperrors.ErrorCodeConflict) {
			logger.Error("Scheduled task failed", "task_id", taskID, "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.jobs[task.ID] = entryID

	// 更新下次运行时间
	if next := s.nextRun(entryID, task.Cron); !next.IsZero() {
		_ = s.taskRepo.UpdateNextRunTime(task.ID, next)
	}
	return nil
}

// nextRun cron 未启动时 Entry.Next 为零值，按表达式计算
func (s *SchedulerService) nextRun(entryID cron.EntryID, spec string) time.Time {
	if entry := s.cron.Entry(entryID); entry.ID != 0 && !entry.Next.IsZero() {
		return entry.Next
	}
	if schedule, err := cron.ParseStandard(spec); err == nil {
		return schedule.Next(time.Now())
	}
	return time.Time{}
}

// RunTask 同步执行一次任务；同一任务正在运行时返回 CONFLICT
func (s *SchedulerService) RunTask(ctx context.Context, taskID string) (*entities.TaskRun, error) {
	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.inflight[task.ID] {
		s.mu.Unlock()
		logger.Warn("Task still running, skipped", "task", task.Name)
		return nil, apperrors.New(apperrors.ErrorCodeConflict, "task is already running").WithDetail("task", task.Name)
	}
	s.inflight[task.ID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, task.ID)
		s.mu.Unlock()
	}()

	run := s.execute(ctx, task)

	if err := s.taskRepo.RecordRun(task.ID, run); err != nil {
		logger.Error("Failed to record task run", "task", task.Name, "error", err)
	}

	s.mu.RLock()
	if entryID, exists := s.jobs[task.ID]; exists {
		if next := s.nextRun(entryID, task.Cron); !next.IsZero() {
			_ = s.taskRepo.UpdateNextRunTime(task.ID, next)
		}
	}
	s.mu.RUnlock()

	return &run, nil
}

// RunTaskNow 立即在后台运行任务；调度器未运行时返回 CONFLICT
func (s *SchedulerService) RunTaskNow(taskID string) error {
	if _, err := s.taskRepo.GetByID(taskID); err != nil {
		return err
	}

	// Stop 在持锁时置 running=false 后才 Wait，这里的 Add 不会与 Wait 交错
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return apperrors.New(apperrors.ErrorCodeConflict, "scheduler is not running").WithDetail("task_id", taskID)
	}
	s.wg.Add(1)
	s.mu.Unlock()

	// 在新的goroutine中执行，避免阻塞
	go func() {
		defer s.wg.Done()
		if _, err := s.RunTask(s.ctx, taskID); err != nil {
			logger.Warn("Manual task run failed", "task_id", taskID, "error", err)
		}
	}()
	return nil
}

// execute 执行任务
func (s *SchedulerService) execute(ctx context.Context, task *entities.ScheduledTask) entities.TaskRun {
	run := entities.TaskRun{StartedAt: time.Now()}
	_ = s.taskRepo.MarkRunning(task.ID, run.StartedAt)
	logger.Info("Executing scheduled task", "task", task.Name, "action", task.Action)

	var (
		result *executor.BatchResult
		err    error
	)
	switch task.Action {
	case entities.TaskActionParse:
		result, err = s.runner.ParseAll(ctx, s.exec, task.Limit)
	case entities.TaskActionScrape:
		result, err = s.runner.ScrapeAll(ctx, s.exec, task.Limit)
	default:
		err = apperrors.New(apperrors.ErrorCodeInvalidRequest, "unsupported task action").
			WithDetail("action", string(task.Action))
	}

	if err != nil {
		run.Err = err.Error()
		logger.Error("Scheduled task aborted", "task", task.Name, "error", err)
		return run
	}

	run.Total = result.TotalCount
	run.Succeeded = result.SuccessCount
	run.Failed = result.FailCount
	logger.Info("Scheduled task finished", "task", task.Name, "summary", result.FormatResultSummary(),
		"elapsed", time.Since(run.StartedAt).Round(time.Millisecond))
	return run
}
