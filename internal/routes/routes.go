package routes

import (
	"net/http"
	"time"

	"task-tracker-api/internal/config"
	"task-tracker-api/internal/database"
	"task-tracker-api/internal/handlers"
	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Deps struct {
	CORS    config.CORSConfig
	Store   *database.Store
	Handler *handlers.Handler
	Auth    middleware.Authenticator
	Policy  services.Policy
	Limiter *middleware.RateLimiter
	Logger  zerolog.Logger
}

func SetupRoutes(d Deps) *gin.Engine {
	ginRouter := gin.New()
	ginRouter.Use(middleware.RequestLogger(d.Logger), middleware.Recovery(d.Logger))
	ginRouter.Use(cors.New(corsConfig(d.CORS)))

	ginRouter.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Health check pings the store.
	ginRouter.GET("/health", func(c *gin.Context) {
		if err := d.Store.Health(c.Request.Context()); err != nil {
			d.Logger.Error().
				Err(err).
				Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": d.Store.Driver()})
	})

	h := d.Handler
	can := func(c services.Capability) gin.HandlerFunc {
		return middleware.RequireCapability(d.Policy, c)
	}

	api := ginRouter.Group("/api")

	// Public routes
	authRoutes := api.Group("/auth")
	if d.Limiter != nil {
		authRoutes.Use(d.Limiter.Handler())
	}
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.Authenticate(d.Auth))
	{
		protected.GET("/users/me", can(services.CapProfileRead), h.Me)
		protected.GET("/users", can(services.CapUsersList), h.ListUsers)

		protected.POST("/tasks", can(services.CapTaskCreate), h.CreateTask)
		protected.GET("/tasks", can(services.CapTaskRead), h.ListTasks)
		protected.PATCH("/tasks", can(services.CapTaskBulkUpdate), h.BulkUpdate)
		protected.GET("/tasks/:id", can(services.CapTaskRead), h.GetTask)

		protected.POST("/tasks/:id/depends-on/:other_id", can(services.CapDependencyWrite), h.AddDependency)
		protected.GET("/tasks/:id/dependencies", can(services.CapTaskRead), h.ListDependencies)

		protected.GET("/tasks/:id/assignees", can(services.CapTaskRead), h.ListAssignees)
		protected.POST("/tasks/:id/assignees/:user_id", can(services.CapAssignmentManage), h.Assign)
		protected.DELETE("/tasks/:id/assignees/:user_id", can(services.CapAssignmentManage), h.Unassign)

		protected.GET("/tasks/:id/events", can(services.CapEventsRead), h.TaskEvents)

		protected.GET("/analytics/overdue", can(services.CapAnalyticsRead), h.Overdue)
		protected.GET("/analytics/distribution", can(services.CapAnalyticsRead), h.StatusDistribution)

		protected.GET("/ws", can(services.CapStreamSubscribe), h.Stream)
	}

	return ginRouter
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
