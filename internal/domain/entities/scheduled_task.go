package entities

import (
	"time"
)

// TaskStatus 任务状态枚举
type TaskStatus string

const (
	TaskStatusIdle    TaskStatus = "idle"    // 空闲状态
	TaskStatusRunning TaskStatus = "running" // 运行中
	TaskStatusSuccess TaskStatus = "success" // 最后一次执行成功
	TaskStatusError   TaskStatus = "error"   // 最后一次执行有失败单元
	TaskStatusStopped TaskStatus = "stopped" // 已停止
)

// TaskAction 批处理动作
type TaskAction string

const (
	TaskActionParse  TaskAction = "parse"  // 解析所有未解析的分享
	TaskActionScrape TaskAction = "scrape" // 刮削缺少元数据的分享和合集文件
)

// IsValid 检查动作是否受支持
func (a TaskAction) IsValid() bool {
	return a == TaskActionParse || a == TaskActionScrape
}

// ScheduledTask 定时批处理任务
type ScheduledTask struct {
	ID           string     `json:"id"`            // 任务ID
	Name         string     `json:"name"`          // 任务名称，配置中唯一
	Enabled      bool       `json:"enabled"`       // 是否启用
	Status       TaskStatus `json:"status"`        // 任务状态
	Cron         string     `json:"cron"`          // cron表达式
	Action       TaskAction `json:"action"`        // parse 或 scrape
	Limit        int        `json:"limit"`         // 单次最多处理的分享数，0 不限
	RunCount     int        `json:"run_count"`     // 运行次数
	SuccessCount int        `json:"success_count"` // 累计成功单元
	FailureCount int        `json:"failure_count"` // 累计失败单元
	LastTotal    int        `json:"last_total"`    // 最后一次处理的单元数
	LastError    string     `json:"last_error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`  // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`  // 更新时间
	LastRunAt    *time.Time `json:"last_run_at"` // 最后运行时间
	NextRunAt    *time.Time `json:"next_run_at"` // 下次运行时间
}

// TaskRun 一次批处理的结果
type TaskRun struct {
	StartedAt time.Time `json:"started_at"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Err       string    `json:"error,omitempty"`
}
