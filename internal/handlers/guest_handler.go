package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flightline/rsvp-backend/internal/middleware"
	"github.com/flightline/rsvp-backend/internal/services"
	"github.com/flightline/rsvp-backend/pkg/validation"
)

type GuestHandler struct {
	authService  *services.AuthService
	guestService *services.GuestService
}

func NewGuestHandler(authService *services.AuthService, guestService *services.GuestService) *GuestHandler {
	return &GuestHandler{
		authService:  authService,
		guestService: guestService,
	}
}

// Register creates a guest for a new phone number.
func (h *GuestHandler) Register(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Phone       string `json:"phone" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and phone are required"})
		return
	}
	name := validation.SanitizeString(req.Name)
	if !validation.ValidateName(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid name"})
		return
	}

	guest, err := h.authService.RegisterGuest(name, req.Phone, validation.SanitizeString(req.Description))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"guest": guestSnapshot(guest)})
}

// GetGuest returns a guest snapshot.
func (h *GuestHandler) GetGuest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}
	guest, err := h.guestService.GetGuest(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guest": guestSnapshot(guest)})
}

// UpdateDescription replaces a guest's bio. The bearer token must belong to
// the guest being mutated; a valid token for anyone else is rejected before
// anything is written.
func (h *GuestHandler) UpdateDescription(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}
	guestID, ok := middleware.GuestID(c)
	if !ok || guestID != targetID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	guest, err := h.guestService.UpdateDescription(guestID, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"guest":   guestSnapshot(guest),
	})
}
