package middleware

import (
	"context"
	"net/http"
	"time"

	"task-tracker-api/internal/cache"
	"task-tracker-api/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than the configured TTL are dropped.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	visitors *cache.SimpleCache[string, *rate.Limiter]
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limit: rate.Limit(cfg.RequestsPerSecond),
		burst: cfg.Burst,
		visitors: cache.NewSimpleCache[string, *rate.Limiter](cache.Options{
			ConcurrencySafe: true,
			DefaultTTL:      cfg.IdleTTL,
		}),
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	return l.visitors.GetOrSet(key, func() *rate.Limiter {
		return rate.NewLimiter(l.limit, l.burst)
	})
}

// Handler rejects requests over the client's budget with 429. A non-positive
// rate disables limiting.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit <= 0 {
			c.Next()
			return
		}
		if !l.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "RateLimited",
				Message: "too many requests",
			})
			return
		}
		c.Next()
	}
}

// Sweep drops idle buckets every interval until ctx is done.
func (l *RateLimiter) Sweep(ctx context.Context, interval time.Duration) {
	l.visitors.Janitor(ctx, interval)
}
