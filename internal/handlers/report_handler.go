package handlers

import (
	"net/http"

	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/services"

	"github.com/gin-gonic/gin"
)

type EventsQuery struct {
	Days *int `form:"days"`
}

// TaskEvents handles GET /api/tasks/:id/events?days=7
func (h *Handler) TaskEvents(c *gin.Context) {
	var q EventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidRequest(c, err)
		return
	}
	days := services.DefaultEventWindowDays
	if q.Days != nil {
		days = *q.Days
	}

	events, err := h.svc.Events.ListRecent(c.Request.Context(), c.Param("id"), days)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// Overdue handles GET /api/analytics/overdue
func (h *Handler) Overdue(c *gin.Context) {
	tasks, err := h.svc.Analytics.Overdue(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// StatusDistribution handles GET /api/analytics/distribution
func (h *Handler) StatusDistribution(c *gin.Context) {
	rows, err := h.svc.Analytics.StatusDistribution(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
