package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/config"
	"task-tracker-api/internal/handlers"
	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/routes"
	"task-tracker-api/internal/services"
	"task-tracker-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	router *gin.Engine
	svc    handlers.Services
}

// newTestEnv serves the production route table, capability guards included.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewStore(t)
	log := zerolog.Nop()
	hub := realtime.NewHub(log)
	events := services.NewEventLog(store, hub, log)
	signer := auth.NewTokenSigner("test-secret", "task-tracker-api", "task-tracker-clients", time.Hour)
	svc := handlers.Services{
		Auth:        services.NewAuthService(store, auth.BcryptHasher{Cost: bcrypt.MinCost}, signer, log),
		Tasks:       services.NewTaskStore(store, events, log),
		Deps:        services.NewDependencyGraph(store, events, log, false),
		Assignments: services.NewAssignmentRegistry(store, events, log),
		Events:      events,
		Analytics:   services.NewAnalyticsEngine(store, log),
		Hub:         hub,
	}

	r := routes.SetupRoutes(routes.Deps{
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		Store:   store,
		Handler: handlers.New(svc, log),
		Auth:    svc.Auth,
		Policy:  services.DefaultPolicy(),
		Limiter: middleware.NewRateLimiter(config.RateLimitConfig{}),
		Logger:  log,
	})
	return &testEnv{router: r, svc: svc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signup registers and logs in a user, returning its token and id.
func (e *testEnv) signup(t *testing.T, email string) (string, string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     email,
		"password":  "password123",
		"full_name": "Test User",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reg struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	w = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login services.LoginResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	return login.AccessToken, reg.UserID
}

func (e *testEnv) createTask(t *testing.T, token string, body map[string]any) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/tasks", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		TaskID string `json:"task_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.TaskID)
	return resp.TaskID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
