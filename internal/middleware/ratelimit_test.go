package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task-tracker-api/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(cfg config.RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(cfg).Handler())
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_PerClientBurst(t *testing.T) {
	r := newLimitedRouter(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2, IdleTTL: time.Minute})

	require.Equal(t, http.StatusOK, hit(r, "10.0.0.1"))
	require.Equal(t, http.StatusOK, hit(r, "10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.1"))

	// Other clients have their own bucket.
	require.Equal(t, http.StatusOK, hit(r, "10.0.0.2"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := newLimitedRouter(config.RateLimitConfig{RequestsPerSecond: 0, Burst: 0})
	for i := 0; i < 20; i++ {
		require.Equal(t, http.StatusOK, hit(r, "10.0.0.1"))
	}
}
