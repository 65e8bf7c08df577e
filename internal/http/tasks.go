package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

// TaskStatuser looks up background task state.
type TaskStatuser interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// ScanTrigger enqueues an overdue scan outside its schedule.
type ScanTrigger interface {
	RunNow(trigger string) (string, error)
}

// TasksController handles task queue endpoints.
type TasksController struct {
	tasks TaskStatuser
	scan  ScanTrigger
}

// NewTasksController creates a new TasksController. scan may be nil when
// the overdue scan is disabled.
func NewTasksController(tasks TaskStatuser, scan ScanTrigger) *TasksController {
	return &TasksController{tasks: tasks, scan: scan}
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "Task ID is required.")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.tasks.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	if status == backlite.TaskStatusNotFound {
		respondError(c, http.StatusNotFound, "Task not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunOverdueScan handles POST /api/tasks/overdue-scan/run
func (tc *TasksController) RunOverdueScan(c *gin.Context) {
	if tc.scan == nil {
		respondError(c, http.StatusServiceUnavailable, "Overdue scan is disabled.")
		return
	}

	taskID, err := tc.scan.RunNow("api")
	if err != nil {
		respondInternalError(c, err, "enqueue overdue scan")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": taskID,
		"message": "Overdue scan enqueued.",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
