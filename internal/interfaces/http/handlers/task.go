package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Aijiaobin/video-api/internal/application/services/task"
	httputil "github.com/Aijiaobin/video-api/pkg/utils/http"
)

// TaskHandler REST任务处理器 - 纯协议转换层
type TaskHandler struct {
	scheduler *task.SchedulerService
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(scheduler *task.SchedulerService) *TaskHandler {
	return &TaskHandler{scheduler: scheduler}
}

// ListTasks 获取任务列表
// @Summary 获取定时任务列表
// @Tags 定时任务
// @Produce json
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.scheduler.GetAllTasks()
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.Success(c, tasks)
}

// GetTask 获取单个定时任务
func (h *TaskHandler) GetTask(c *gin.Context) {
	t, err := h.scheduler.GetTask(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.Success(c, t)
}

// RunTaskNow 立即在后台运行一次
// @Summary 立即运行定时任务
// @Tags 定时任务
// @Param id path string true "任务ID"
// @Router /tasks/{id}/run [post]
func (h *TaskHandler) RunTaskNow(c *gin.Context) {
	taskID := c.Param("id")
	if err := h.scheduler.RunTaskNow(taskID); err != nil {
		_ = c.Error(err)
		return
	}
	httputil.Success(c, gin.H{"message": "Task started", "id": taskID})
}
