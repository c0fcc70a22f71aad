package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flightline/rsvp-backend/internal/services"
	"github.com/flightline/rsvp-backend/internal/store"
)

type AdminHandler struct {
	adminService   *services.AdminService
	guestService   *services.GuestService
	eventService   *services.EventService
	rsvpService    *services.RsvpService
	settingService *services.SettingService
	auditService   *services.AuditService
}

func NewAdminHandler(adminService *services.AdminService, guestService *services.GuestService, eventService *services.EventService, rsvpService *services.RsvpService, settingService *services.SettingService, auditService *services.AuditService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		guestService:   guestService,
		eventService:   eventService,
		rsvpService:    rsvpService,
		settingService: settingService,
		auditService:   auditService,
	}
}

// Login exchanges the shared admin password for an admin token.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}

	token, err := h.adminService.Login(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.auditService.Record("admin_login", "session", "", nil, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// ListGuests returns the full guest roster.
func (h *AdminHandler) ListGuests(c *gin.Context) {
	guests, err := h.guestService.ListGuests()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"guests": guests})
}

// Roster returns every RSVP with its guest attached.
func (h *AdminHandler) Roster(c *gin.Context) {
	roster, err := h.rsvpService.Roster()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rsvps": roster})
}

// CreateEvent adds a schedule block.
func (h *AdminHandler) CreateEvent(c *gin.Context) {
	var input services.EventBlockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	block, err := h.eventService.CreateEventBlock(input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.auditService.Record("event_create", "event_block", block.ID.String(), gin.H{"title": block.Title}, c.ClientIP())
	c.JSON(http.StatusCreated, gin.H{"event": block})
}

// UpdateEvent replaces a schedule block's fields.
func (h *AdminHandler) UpdateEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}
	var input services.EventBlockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	block, err := h.eventService.UpdateEventBlock(id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.auditService.Record("event_update", "event_block", block.ID.String(), gin.H{"title": block.Title}, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"event": block})
}

// DeleteEvent removes a schedule block and its RSVPs.
func (h *AdminHandler) DeleteEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}
	if err := h.eventService.DeleteEventBlock(id); err != nil {
		respondError(c, err)
		return
	}
	h.auditService.Record("event_delete", "event_block", id.String(), nil, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ReorderEvents assigns new sort positions in one shot.
func (h *AdminHandler) ReorderEvents(c *gin.Context) {
	var req struct {
		Order []store.EventOrder `json:"order" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.eventService.ReorderEventBlocks(req.Order); err != nil {
		respondError(c, err)
		return
	}
	h.auditService.Record("events_reorder", "event_block", "", gin.H{"count": len(req.Order)}, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateSettings upserts the landing-page copy.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req struct {
		EventTitle       string `json:"event_title"`
		EventDescription string `json:"event_description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.settingService.UpdateEventSettings(req.EventTitle, req.EventDescription); err != nil {
		respondError(c, err)
		return
	}
	h.auditService.Record("settings_update", "setting", "", nil, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListAudit returns the most recent admin actions.
func (h *AdminHandler) ListAudit(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}
	entries, err := h.auditService.List(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": entries})
}
