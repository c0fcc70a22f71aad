package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flightline/rsvp-backend/internal/config"
	jwtpkg "github.com/flightline/rsvp-backend/pkg/jwt"
)

const (
	// ContextGuestID is the context key holding the authenticated guest id.
	ContextGuestID = "guestID"
)

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

// EditAuth validates the bearer edit token and stores the guest id in the
// request context. Token failures are logged server-side only; the caller
// always sees the same unauthorized body.
func EditAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			c.Abort()
			return
		}

		guestIDStr, err := jwtpkg.ValidateEditToken(token, cfg.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}
		guestID, err := uuid.Parse(guestIDStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextGuestID, guestID)
		c.Next()
	}
}

// GuestID returns the authenticated guest id placed by EditAuth.
func GuestID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(ContextGuestID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// AdminAuth requires a bearer token carrying the admin scope.
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := jwtpkg.ValidateToken(token, cfg.JWTSecret)
		if err != nil || claims.Scope != jwtpkg.ScopeAdmin {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
