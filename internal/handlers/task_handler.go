package handlers

import (
	"net/http"

	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateTaskRequest accepts either form fields or a JSON body. Title is checked
// by the task store so an empty one reports InvalidTitle.
type CreateTaskRequest struct {
	Title       string  `form:"title" json:"title"`
	Description string  `form:"description" json:"description"`
	Status      string  `form:"status" json:"status"`
	Priority    *int    `form:"priority" json:"priority"`
	DueDate     string  `form:"due_date" json:"due_date"`
	Tags        *string `form:"tags" json:"tags"`
	ParentID    *string `form:"parent_id" json:"parent_id"`
}

type ListTasksQuery struct {
	Status   string `form:"status"`
	Priority *int   `form:"priority"`
	Assignee string `form:"assignee"`
	Tag      string `form:"tag"`
}

// CreateTask handles POST /api/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	taskID, err := h.svc.Tasks.Create(c.Request.Context(), identity(c), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		ParentID:    req.ParentID,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task_id": taskID})
}

// GetTask handles GET /api/tasks/:id
func (h *Handler) GetTask(c *gin.Context) {
	task, err := h.svc.Tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ListTasks handles GET /api/tasks?status=&priority=&assignee=&tag=
func (h *Handler) ListTasks(c *gin.Context) {
	var q ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidRequest(c, err)
		return
	}

	tasks, err := h.svc.Tasks.List(c.Request.Context(), services.TaskFilter{
		Status:   q.Status,
		Priority: q.Priority,
		Assignee: q.Assignee,
		Tag:      q.Tag,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// BulkUpdate handles PATCH /api/tasks with a JSON array of {id, fields}.
func (h *Handler) BulkUpdate(c *gin.Context) {
	var updates []services.TaskUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		invalidRequest(c, err)
		return
	}

	n, err := h.svc.Tasks.BulkUpdate(c.Request.Context(), identity(c), updates)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
