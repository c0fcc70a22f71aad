package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flightline/rsvp-backend/internal/services"
)

type PublicHandler struct {
	eventService   *services.EventService
	settingService *services.SettingService
}

func NewPublicHandler(eventService *services.EventService, settingService *services.SettingService) *PublicHandler {
	return &PublicHandler{
		eventService:   eventService,
		settingService: settingService,
	}
}

// GetSchedule returns both schedule tracks ordered by sort position.
func (h *PublicHandler) GetSchedule(c *gin.Context) {
	blocks, err := h.eventService.ListEventBlocks()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": blocks})
}

// GetSettings returns the landing-page copy.
func (h *PublicHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingService.GetEventSettings()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
