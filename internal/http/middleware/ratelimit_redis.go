package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/domain"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter implements fixed-window limits with Redis INCR/EXPIRE. With no
// Redis client it counts in memory; on Redis errors it fails open.
type RateLimiter struct {
	redis    *redis.Client
	fallback *MemoryLimiter
	log      *zap.Logger
}

func NewRateLimiter(client *redis.Client, log *zap.Logger) *RateLimiter {
	return &RateLimiter{redis: client, fallback: NewMemoryLimiter(), log: log}
}

// hit returns the number of requests seen for key in the current window.
func (l *RateLimiter) hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	if l.redis == nil {
		return l.fallback.Incr(key, window), nil
	}

	val, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		// first increment, set expiry
		l.redis.Expire(ctx, key, window)
	}
	return val, nil
}

// ByIP limits requests per client IP. key format: rl:<name>:<window_seconds>:<ip>
func (l *RateLimiter) ByIP(name string, limit config.RateLimit) gin.HandlerFunc {
	return l.limit(name, limit, func(c *gin.Context) (string, bool) {
		return c.ClientIP(), true
	})
}

// ByIdentity limits requests per authenticated user. Must run after IsAuthenticated.
func (l *RateLimiter) ByIdentity(name string, limit config.RateLimit) gin.HandlerFunc {
	return l.limit(name, limit, func(c *gin.Context) (string, bool) {
		id, ok := domain.IdentityFrom(c.Request.Context())
		return id.UserID, ok
	})
}

func (l *RateLimiter) limit(name string, limit config.RateLimit, identify func(*gin.Context) (string, bool)) gin.HandlerFunc {
	windowSecs := strconv.FormatInt(int64(limit.Window.Seconds()), 10)

	return func(c *gin.Context) {
		if limit.Max <= 0 || limit.Window <= 0 {
			c.Next()
			return
		}

		ident, ok := identify(c)
		if !ok {
			_ = c.Error(domain.InvalidInput(domain.MsgInvalidSession))
			c.Abort()
			return
		}

		key := "rl:" + name + ":" + windowSecs + ":" + ident
		val, err := l.hit(c.Request.Context(), key, limit.Window)
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			l.log.Warn("rate limiter unavailable", zap.String("limiter", name), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(limit.Max)-val), 10))

		if val > int64(limit.Max) {
			RLBlocked.WithLabelValues(name).Inc()
			c.Header("Retry-After", windowSecs)
			_ = c.Error(domain.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"))
			c.Abort()
			return
		}

		RLRequests.WithLabelValues(name).Inc()
		c.Next()
	}
}
