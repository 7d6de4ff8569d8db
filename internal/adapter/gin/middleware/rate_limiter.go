package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	WindowSeconds     int
	Enabled           bool
}

// fixedWindowScript increments the counter for KEYS[1] and starts its window
// on the first hit.
var fixedWindowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('EXPIRE', KEYS[1], tonumber(ARGV[1]))
	end
	return count
`)

// RateLimiter counts requests per client and route in Redis using fixed windows.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
}

// NewRateLimiter creates a new rate limiter. A nil client disables limiting.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
	}
}

func (rl *RateLimiter) maxRequests() int64 {
	return int64(rl.config.RequestsPerSecond * float64(rl.config.WindowSeconds))
}

// Allow reports whether one more request under key fits the current window.
// Redis failures fail open.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl == nil || !rl.config.Enabled || rl.client == nil {
		return true
	}

	count, err := fixedWindowScript.Run(ctx, rl.client, []string{key}, rl.config.WindowSeconds).Int64()
	if err != nil {
		rl.log.Warn("rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
		return true
	}

	if count > rl.maxRequests() {
		rl.log.Warn("rate limit exceeded", zap.String("key", key), zap.Int64("count", count))
		return false
	}
	return true
}

// Middleware returns the gin handler enforcing the limit per method, path and client ip.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s:%s", c.Request.Method, c.FullPath(), c.ClientIP())

		if !rl.Allow(c.Request.Context(), key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": fmt.Sprintf("rate limit exceeded: %.0f requests/second", rl.config.RequestsPerSecond),
			})
			return
		}

		c.Next()
	}
}
