package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

func (h *TaskHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Index)

	api := r.Group("/api")
	api.GET("/tasks", h.GetTasks)
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks/stats", h.GetStats)
	api.PUT("/tasks/bulk", h.BulkUpdateTasks)
	api.GET("/tasks/:id", h.GetTaskByID)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)
}

func (h *TaskHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Task Tracker API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"GET /api/tasks":        "Get all tasks",
			"POST /api/tasks":       "Create a new task",
			"GET /api/tasks/:id":    "Get a specific task",
			"PUT /api/tasks/:id":    "Update a task",
			"DELETE /api/tasks/:id": "Delete a task",
			"GET /api/tasks/stats":  "Get task statistics",
			"PUT /api/tasks/bulk":   "Bulk update tasks",
		},
	})
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	filter := services.TaskFilter{
		Status:   c.DefaultQuery("filter", "all"),
		Search:   c.Query("search"),
		Priority: c.Query("priority"),
	}

	tasks, err := h.taskService.ListTasks(h.db, filter)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

type CreateTaskRequest struct {
	Text      string  `json:"text"`
	Priority  string  `json:"priority"`
	DueDate   *string `json:"dueDate"`
	Completed bool    `json:"completed"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	input := services.CreateTaskInput{
		Text:      req.Text,
		Priority:  req.Priority,
		Completed: req.Completed,
	}
	if req.DueDate != nil {
		input.DueDate = *req.DueDate
	}

	task, err := h.taskService.CreateTask(h.db, input)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTaskByID(h.db, id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTaskRequest is a partial update payload. Absent fields stay nil so
// "field omitted" and "field set to null" remain distinguishable; a null or
// empty dueDate clears the due date.
type UpdateTaskRequest struct {
	Text      *string
	Completed *bool
	Priority  *string
	DueDate   *string
}

func (r *UpdateTaskRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["text"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("text must be a string")
		}
		r.Text = &s
	}

	if v, ok := raw["completed"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return fmt.Errorf("completed must be a boolean")
		}
		r.Completed = &b
	}

	if v, ok := raw["priority"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("priority must be a string")
		}
		r.Priority = &s
	}

	if v, ok := raw["dueDate"]; ok {
		if string(v) == "null" {
			empty := ""
			r.DueDate = &empty
		} else {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("dueDate must be a string or null")
			}
			r.DueDate = &s
		}
	}

	return nil
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.UpdateTask(h.db, id, services.UpdateTaskInput{
		Text:      req.Text,
		Completed: req.Completed,
		Priority:  req.Priority,
		DueDate:   req.DueDate,
	})
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(h.db, id); err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *TaskHandler) GetStats(c *gin.Context) {
	stats, err := h.taskService.GetStats(h.db)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

type BulkUpdates struct {
	Completed *bool   `json:"completed"`
	Priority  *string `json:"priority"`
}

type BulkUpdateRequest struct {
	TaskIDs []uint       `json:"task_ids"`
	Updates *BulkUpdates `json:"updates"`
}

func (h *TaskHandler) BulkUpdateTasks(c *gin.Context) {
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_ids must be a list of task ids"})
		return
	}

	if req.TaskIDs == nil || req.Updates == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_ids and updates are required"})
		return
	}

	tasks, err := h.taskService.BulkUpdateTasks(h.db, req.TaskIDs, services.BulkUpdateInput{
		Completed: req.Updates.Completed,
		Priority:  req.Updates.Priority,
	})
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Updated %d tasks successfully", len(tasks)),
		"updated_tasks": tasks,
	})
}

// taskID parses the :id route parameter. A non-numeric id behaves like an
// unmatched route and yields the generic not-found body.
func taskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
		return 0, false
	}
	return uint(id), true
}

func handleTaskError(c *gin.Context, err error) {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process task request"})
	}
}
