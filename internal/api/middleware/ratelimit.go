package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsdeck/opsdeck-backend-go/internal/core/metrics"
	"github.com/opsdeck/opsdeck-backend-go/internal/core/ratelimit"
	"github.com/opsdeck/opsdeck-backend-go/pkg/utils"
)

// RateLimit applies a fixed-window limit keyed by client IP. The limiter's
// fail mode decides what happens when the backing store is down; the wiring
// in the router documents which routes fail open and which fail closed.
func RateLimit(limiter *ratelimit.Limiter, name string, window time.Duration, maxRequests int) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := limiter.CheckLimit(c.Request.Context(), name+":"+c.ClientIP(), window, maxRequests)

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetTime.Unix(), 10))

		if !decision.Allowed {
			metrics.RateLimitDeniedTotal.WithLabelValues(name).Inc()
			utils.SendError(c, http.StatusTooManyRequests, "Rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
