package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/leasebot/internal/shared/logger"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

// RateLimiter is a fixed-window per-IP counter kept in Redis.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	logger logger.Interface
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string, logger logger.Interface) *RateLimiter {
	if prefix == "" {
		prefix = "leasebot"
	}
	return &RateLimiter{client: client, limit: limit, window: window, prefix: prefix, logger: logger, now: time.Now}
}

// Limit rejects requests over the limit with 429. Requests pass when Redis
// is unavailable.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		window := max(int64(rl.window/time.Second), 1)
		now := rl.now().Unix()
		bucket := now / window
		key := fmt.Sprintf("%s:ratelimit:%s:%d", rl.prefix, c.ClientIP(), bucket)
		ctx := c.Request.Context()

		count, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			rl.client.Expire(ctx, key, rl.window+time.Second)
		}

		if count > int64(rl.limit) {
			// Seconds until the current window rolls over.
			c.Header("Retry-After", fmt.Sprintf("%d", window-now%window))
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
