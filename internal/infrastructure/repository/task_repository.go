package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	svcerrors "github.com/Aijiaobin/video-api/internal/shared/errors"
)

const taskFileName = "scheduled_tasks.json"

// TaskRepository 定时任务状态，保存在数据目录下的 JSON 文件中
type TaskRepository struct {
	filePath string
	mu       sync.RWMutex
	tasks    map[string]*entities.ScheduledTask
}

func NewTaskRepository(dataDir string) (*TaskRepository, error) {
	// 确保数据目录存在
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &TaskRepository{
		filePath: filepath.Join(dataDir, taskFileName),
		tasks:    make(map[string]*entities.ScheduledTask),
	}

	// 加载已存在的任务
	if err := repo.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	return repo, nil
}

// load 从文件加载任务
func (r *TaskRepository) load() error {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return err
	}

	var tasks []*entities.ScheduledTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks = make(map[string]*entities.ScheduledTask)
	for _, task := range tasks {
		r.tasks[task.ID] = task
	}

	return nil
}

// saveUnlocked 写临时文件后改名，调用时必须已经持有锁
func (r *TaskRepository) saveUnlocked() error {
	tasks := r.sortedUnlocked()

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, r.filePath)
}

func (r *TaskRepository) sortedUnlocked() []*entities.ScheduledTask {
	tasks := make([]*entities.ScheduledTask, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	return tasks
}

func (r *TaskRepository) findByNameUnlocked(name string) *entities.ScheduledTask {
	for _, task := range r.tasks {
		if task.Name == name {
			return task
		}
	}
	return nil
}

// Sync 按名称登记配置中的任务；已存在的任务更新定义并保留运行统计
func (r *TaskRepository) Sync(def *entities.ScheduledTask) (*entities.ScheduledTask, error) {
	if def.Name == "" {
		return nil, svcerrors.New(svcerrors.ErrorCodeInvalidRequest, "task name is required")
	}
	if !def.Action.IsValid() {
		return nil, svcerrors.New(svcerrors.ErrorCodeInvalidRequest, "unsupported task action").
			WithDetail("action", string(def.Action))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	task := r.findByNameUnlocked(def.Name)
	if task == nil {
		task = &entities.ScheduledTask{
			ID:        uuid.New().String(),
			Name:      def.Name,
			Status:    entities.TaskStatusIdle,
			CreatedAt: now,
		}
		r.tasks[task.ID] = task
	}
	task.Enabled = def.Enabled
	task.Cron = def.Cron
	task.Action = def.Action
	task.Limit = def.Limit
	if !task.Enabled {
		task.Status = entities.TaskStatusStopped
	} else if task.Status == entities.TaskStatusStopped || task.Status == entities.TaskStatusRunning {
		task.Status = entities.TaskStatusIdle
	}
	task.UpdatedAt = now

	copied := *task
	return &copied, r.saveUnlocked()
}

// GetByID 根据ID获取任务快照
func (r *TaskRepository) GetByID(id string) (*entities.ScheduledTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, exists := r.tasks[id]
	if !exists {
		return nil, svcerrors.New(svcerrors.ErrorCodeNotFound, "task not found").WithDetail("task_id", id)
	}
	copied := *task
	return &copied, nil
}

// GetAll 获取所有任务快照，按名称排序
func (r *TaskRepository) GetAll() ([]*entities.ScheduledTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := r.sortedUnlocked()
	out := make([]*entities.ScheduledTask, len(tasks))
	for i, task := range tasks {
		copied := *task
		out[i] = &copied
	}
	return out, nil
}

// Delete 删除任务
func (r *TaskRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return r.saveUnlocked()
}

// MarkRunning 标记任务开始运行
func (r *TaskRepository) MarkRunning(id string, startedAt time.Time) error {
	return r.update(id, func(task *entities.ScheduledTask) {
		task.Status = entities.TaskStatusRunning
		task.LastRunAt = &startedAt
	})
}

// RecordRun 累加一次运行的统计
func (r *TaskRepository) RecordRun(id string, run entities.TaskRun) error {
	return r.update(id, func(task *entities.ScheduledTask) {
		task.RunCount++
		task.SuccessCount += run.Succeeded
		task.FailureCount += run.Failed
		task.LastTotal = run.Total
		task.LastError = run.Err
		startedAt := run.StartedAt
		task.LastRunAt = &startedAt
		if run.Err != "" || run.Failed > 0 {
			task.Status = entities.TaskStatusError
		} else {
			task.Status = entities.TaskStatusSuccess
		}
	})
}

// UpdateNextRunTime 更新下次运行时间
func (r *TaskRepository) UpdateNextRunTime(id string, nextTime time.Time) error {
	return r.update(id, func(task *entities.ScheduledTask) {
		task.NextRunAt = &nextTime
	})
}

func (r *TaskRepository) update(id string, fn func(task *entities.ScheduledTask)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, exists := r.tasks[id]
	if !exists {
		return svcerrors.New(svcerrors.ErrorCodeNotFound, "task not found").WithDetail("task_id", id)
	}
	fn(task)
	task.UpdatedAt = time.Now()
	return r.saveUnlocked()
}
