package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flightline/rsvp-backend/internal/services"
)

// respondError maps the service-layer outcome set onto HTTP statuses with
// generic bodies. Anything outside the set is logged and returned as a bare
// internal error so provider or database detail never reaches the caller.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidPhone),
		errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrCodeStale):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrGuestNotFound),
		errors.Is(err, services.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
	case errors.Is(err, services.ErrUnauthorized),
		errors.Is(err, services.ErrInvalidAdminPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, services.ErrSendFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send or check verification"})
	default:
		zap.L().Error("unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
