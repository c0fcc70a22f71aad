package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flightline/rsvp-backend/internal/config"
	"github.com/flightline/rsvp-backend/internal/ratelimit"
)

// AuthRateLimit guards the auth endpoints with the general limiter, keyed
// by a salted hash of the caller IP. The response body never reveals
// whether the targeted identity exists.
func AuthRateLimit(limiter *ratelimit.Limiter, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := ratelimit.HashIP(cfg.IPHashSecret, c.ClientIP())
		allowed, retryAfter, _ := limiter.Allow(c.Request.Context(), bucket)
		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
