package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/flowtrack/flowtrack-api/internal/errors"
	"github.com/flowtrack/flowtrack-api/internal/metrics"
	"github.com/flowtrack/flowtrack-api/internal/models"
	"github.com/flowtrack/flowtrack-api/internal/ratelimit"
)

// LoginKey is the part of a login body the limiter keys on.
type LoginKey struct {
	Email string `json:"email"`
}

// LoginRateLimit throttles login attempts per client IP and email.
// The request body stays readable through ShouldBindBodyWithJSON.
func LoginRateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body LoginKey
		_ = c.ShouldBindBodyWithJSON(&body)

		key := c.ClientIP() + ":" + models.NormalizeEmail(body.Email)
		result, _ := limiter.Allow(c.Request.Context(), key)
		if !result.Allowed {
			metrics.AuthLoginsTotal.WithLabelValues(metrics.LoginRateLimited).Inc()
			if secs := int(result.RetryAfter.Seconds()); secs > 0 {
				c.Header("Retry-After", strconv.Itoa(secs))
			}
			apierrors.TooManyRequests(c, "Too many login attempts, try again later")
			return
		}
		c.Next()
	}
}
