package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/henrykhoiminh/soteria-health-mobile-sub001/pkg/logger"
	"github.com/henrykhoiminh/soteria-health-mobile-sub001/pkg/ratelimit"
)

var log = logger.NewLogger("info")

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	Window      time.Duration
	MaxRequests int64
}

// RateLimitMiddleware creates a middleware for rate limiting using Redis.
// Keys combine client IP and path so one noisy caller cannot starve an
// endpoint for everyone else.
func RateLimitMiddleware(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		path := c.Request.URL.Path
		key := fmt.Sprintf("%s:%s", ip, path)

		result, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Error("Rate limiter error", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			c.Abort()
			return
		}

		// Add rate limit headers
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", result.ResetAt.String())

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":    "rate limit exceeded",
				"reset_in": time.Until(result.ResetAt).String(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
