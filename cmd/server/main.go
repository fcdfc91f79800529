package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/config"
	"task-tracker-api/internal/database"
	"task-tracker-api/internal/handlers"
	"task-tracker-api/internal/logger"
	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/routes"
	"task-tracker-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Read()
	if err != nil {
		bootLog := logger.New("info", false)
		bootLog.Fatal().
			Err(err).
			Msg("failed to read config")
	}

	log := logger.New(cfg.LogLevel, cfg.IsLocal())
	log.Info().
		Str("env", cfg.Env).
		Msg("read config")

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().
			Err(err).
			Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	store, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().
				Err(err).
				Msg("failed to close database")
		}
	}()

	if err := store.Migrate(); err != nil {
		return err
	}
	log.Info().Msg("migrated database")

	hasher, err := auth.NewHasher(cfg.Auth.PasswordHasher)
	if err != nil {
		return err
	}
	signer := auth.NewTokenSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL)

	hub := realtime.NewHub(log)
	events := services.NewEventLog(store, hub, log)
	authSvc := services.NewAuthService(store, hasher, signer, log)

	h := handlers.New(handlers.Services{
		Auth:        authSvc,
		Tasks:       services.NewTaskStore(store, events, log),
		Deps:        services.NewDependencyGraph(store, events, log, cfg.Tasks.RejectDependencyCycles),
		Assignments: services.NewAssignmentRegistry(store, events, log),
		Events:      events,
		Analytics:   services.NewAnalyticsEngine(store, log),
		Hub:         hub,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	go limiter.Sweep(ctx, time.Minute)

	router := routes.SetupRoutes(routes.Deps{
		CORS:    cfg.CORS,
		Store:   store,
		Handler: h,
		Auth:    authSvc,
		Policy:  services.DefaultPolicy(),
		Limiter: limiter,
		Logger:  log,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("db_driver", store.Driver()).
			Bool("reject_dependency_cycles", cfg.Tasks.RejectDependencyCycles).
			Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("shut down http server")
	return nil
}
