package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flightline/rsvp-backend/internal/middleware"
	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/services"
)

type RsvpHandler struct {
	rsvpService *services.RsvpService
}

func NewRsvpHandler(rsvpService *services.RsvpService) *RsvpHandler {
	return &RsvpHandler{rsvpService: rsvpService}
}

// Upsert records the caller's answer for one event block. The token's guest
// must match the RSVP's guest.
func (h *RsvpHandler) Upsert(c *gin.Context) {
	guestID, ok := middleware.GuestID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		GuestID      string            `json:"guest_id" binding:"required"`
		EventBlockID string            `json:"event_block_id" binding:"required"`
		Status       models.RsvpStatus `json:"status" binding:"required,oneof=JOINED DECLINED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	bodyGuestID, err := uuid.Parse(req.GuestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}
	if bodyGuestID != guestID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	eventBlockID, err := uuid.Parse(req.EventBlockID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}

	rsvp, err := h.rsvpService.Upsert(guestID, eventBlockID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rsvp": rsvp})
}

// ByGuest lists a guest's RSVPs.
func (h *RsvpHandler) ByGuest(c *gin.Context) {
	guestID, err := uuid.Parse(c.Param("guestId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}
	rsvps, err := h.rsvpService.ByGuest(guestID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rsvps": rsvps})
}
