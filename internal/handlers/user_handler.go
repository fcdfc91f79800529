package handlers

import (
	"net/http"

	"task-tracker-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Me handles GET /api/users/me
func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.Auth.Profile(c.Request.Context(), identity(c).UserID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /api/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.Auth.ListUsers(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}
