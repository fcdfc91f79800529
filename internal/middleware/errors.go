package middleware

import (
	"net/http"

	"task-tracker-api/internal/services"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusFor maps a core error kind onto an HTTP status. Anything that is not a
// core error is a 500.
func StatusFor(err error) int {
	e, ok := services.AsError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case services.KindValidation, services.KindConflict:
		return http.StatusBadRequest
	case services.KindAuth:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// RespondError aborts the request with the mapped status and error body.
// Internal errors are attached to the gin context for the request logger and
// never leak to the caller.
func RespondError(c *gin.Context, err error) {
	e, ok := services.AsError(err)
	if !ok {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal",
			Message: "internal server error",
		})
		return
	}
	msg := err.Error()
	if msg == "" {
		msg = e.Msg
	}
	c.AbortWithStatusJSON(StatusFor(err), ErrorResponse{Error: e.Code, Message: msg})
}
