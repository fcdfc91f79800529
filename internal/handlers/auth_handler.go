package handlers

import (
	"net/http"

	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/services"

	"github.com/gin-gonic/gin"
)

// RegisterRequest accepts either form fields or a JSON body.
type RegisterRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
	FullName string `form:"full_name" json:"full_name" binding:"required"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	services.RegisterResult
}

type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Register handles POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	res, err := h.svc.Auth.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RegisterResponse{Message: "User created", RegisterResult: *res})
}

// Login handles POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	res, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
