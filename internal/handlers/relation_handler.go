package handlers

import (
	"net/http"

	"task-tracker-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

// AddDependency handles POST /api/tasks/:id/depends-on/:other_id
func (h *Handler) AddDependency(c *gin.Context) {
	err := h.svc.Deps.AddDependency(c.Request.Context(), identity(c), c.Param("id"), c.Param("other_id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Dependency added"})
}

// ListDependencies handles GET /api/tasks/:id/dependencies
func (h *Handler) ListDependencies(c *gin.Context) {
	ids, err := h.svc.Deps.Dependencies(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": c.Param("id"), "depends_on": ids})
}

// Assign handles POST /api/tasks/:id/assignees/:user_id
func (h *Handler) Assign(c *gin.Context) {
	created, err := h.svc.Assignments.Assign(c.Request.Context(), identity(c), c.Param("id"), c.Param("user_id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": created})
}

// Unassign handles DELETE /api/tasks/:id/assignees/:user_id
func (h *Handler) Unassign(c *gin.Context) {
	removed, err := h.svc.Assignments.Unassign(c.Request.Context(), identity(c), c.Param("id"), c.Param("user_id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// ListAssignees handles GET /api/tasks/:id/assignees
func (h *Handler) ListAssignees(c *gin.Context) {
	ids, err := h.svc.Assignments.Assignees(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": c.Param("id"), "assignees": ids})
}
