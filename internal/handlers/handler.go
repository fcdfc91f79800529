package handlers

import (
	"net/http"

	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Services groups the core components the transport depends on.
type Services struct {
	Auth        *services.AuthService
	Tasks       *services.TaskStore
	Deps        *services.DependencyGraph
	Assignments *services.AssignmentRegistry
	Events      *services.EventLog
	Analytics   *services.AnalyticsEngine
	Hub         *realtime.Hub
}

// Handler translates HTTP requests into core calls and core results into
// responses.
type Handler struct {
	svc    Services
	logger zerolog.Logger
}

func New(svc Services, logger zerolog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With().Str("component", "handlers").Logger(),
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// invalidRequest reports a request that could not be bound.
func invalidRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorResponse{
		Error:   "InvalidRequest",
		Message: err.Error(),
	})
}

// identity is only called behind middleware.Authenticate.
func identity(c *gin.Context) services.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}
