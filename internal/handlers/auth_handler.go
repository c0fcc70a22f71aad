package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flightline/rsvp-backend/internal/middleware"
	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/services"
	"github.com/flightline/rsvp-backend/pkg/validation"
)

type AuthHandler struct {
	authService  *services.AuthService
	guestService *services.GuestService
}

func NewAuthHandler(authService *services.AuthService, guestService *services.GuestService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		guestService: guestService,
	}
}

func guestSnapshot(guest *models.Guest) gin.H {
	return gin.H{
		"id":               guest.ID,
		"name":             guest.Name,
		"phone":            guest.Phone,
		"phone_verified":   guest.PhoneVerified,
		"description":      guest.Description,
		"plus_ones":        guest.PlusOnes,
		"last_verified_at": guest.LastVerifiedAt,
	}
}

// PhoneLogin handles login by phone number alone, without possession proof.
func (h *AuthHandler) PhoneLogin(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone is required"})
		return
	}

	token, guest, err := h.authService.PhoneLogin(req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"edit_token": token,
		"guest":      guestSnapshot(guest),
	})
}

// StartVerification triggers an SMS challenge for a guest, optionally
// updating the phone on file first.
func (h *AuthHandler) StartVerification(c *gin.Context) {
	var req struct {
		GuestID string `json:"guest_id" binding:"required"`
		Phone   string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Guest id is required"})
		return
	}
	guestID, err := uuid.Parse(req.GuestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}

	if err := h.authService.StartVerification(c.Request.Context(), guestID, req.Phone, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VerifyCode checks a submitted one-time code and, on success, returns the
// edit token that unlocks guest-owned mutations.
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req struct {
		GuestID string `json:"guest_id" binding:"required"`
		Code    string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Guest id and code are required"})
		return
	}
	guestID, err := uuid.Parse(req.GuestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest id"})
		return
	}
	// Malformed codes are rejected before the store is touched.
	if !validation.ValidateCode(req.Code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code must be 6 digits"})
		return
	}

	token, guest, err := h.authService.VerifyCode(c.Request.Context(), guestID, strings.TrimSpace(req.Code))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"edit_token": token,
		"guest":      guestSnapshot(guest),
	})
}

// VerifySession resolves the bearer token to a guest snapshot plus joined
// RSVPs.
func (h *AuthHandler) VerifySession(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	guest, joined, err := h.authService.VerifySession(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"guest":   guestSnapshot(guest),
		"rsvps":   joined,
	})
}

// UpdateProfile applies a partial profile update to the token's own guest.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	guestID, ok := middleware.GuestID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Phone    *string `json:"phone"`
		PlusOnes *int    `json:"plus_ones"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	guest, err := h.guestService.UpdateProfile(guestID, services.ProfileUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		PlusOnes: req.PlusOnes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"guest":   guestSnapshot(guest),
	})
}
