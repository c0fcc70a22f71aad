package store

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flightline/rsvp-backend/internal/models"
)

// ErrNotFound is returned for lookups that match no record, regardless of
// backend.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write would violate a uniqueness
// constraint, regardless of backend.
var ErrConflict = errors.New("duplicate record")

// Store is the persistence boundary for the whole application. Two
// implementations exist: a map-backed in-memory store for tests and local
// development, and a GORM-backed relational store. The backend is chosen
// once at startup from configuration.
type Store interface {
	// Guests
	GetGuest(id uuid.UUID) (*models.Guest, error)
	GetGuestByPhone(phone string) (*models.Guest, error)
	ListGuests() ([]models.Guest, error)
	CreateGuest(guest *models.Guest) error
	// UpdateGuest applies the given fields atomically (last writer wins per
	// field) and returns the updated record.
	UpdateGuest(id uuid.UUID, fields map[string]interface{}) (*models.Guest, error)

	// Verification codes
	CreateVerification(v *models.PhoneVerification) error
	// LatestVerification returns the most recently issued code for the
	// guest and purpose.
	LatestVerification(guestID uuid.UUID, purpose string) (*models.PhoneVerification, error)
	// ConsumeVerification marks the code consumed if and only if it has not
	// been consumed yet; it reports whether this call won the transition.
	ConsumeVerification(id uuid.UUID, at time.Time) (bool, error)
	IncrementVerificationAttempts(id uuid.UUID) error

	// Event blocks
	ListEventBlocks() ([]models.EventBlock, error)
	GetEventBlock(id uuid.UUID) (*models.EventBlock, error)
	CreateEventBlock(block *models.EventBlock) error
	UpdateEventBlock(id uuid.UUID, fields map[string]interface{}) (*models.EventBlock, error)
	DeleteEventBlock(id uuid.UUID) error
	ReorderEventBlocks(order []EventOrder) error

	// RSVPs
	RsvpsByGuest(guestID uuid.UUID) ([]models.Rsvp, error)
	RsvpsByEvent(eventBlockID uuid.UUID) ([]models.Rsvp, error)
	ListRsvpsWithGuests() ([]models.RsvpWithGuest, error)
	UpsertRsvp(guestID, eventBlockID uuid.UUID, status models.RsvpStatus) (*models.Rsvp, error)
	DeleteRsvp(guestID, eventBlockID uuid.UUID) error

	// Settings
	GetSetting(key string) (*models.Setting, error)
	UpsertSetting(key, value string) (*models.Setting, error)

	// Audit trail
	CreateAuditLog(entry *models.AuditLog) error
	// ListAuditLogs returns the newest entries first, at most limit of them.
	ListAuditLogs(limit int) ([]models.AuditLog, error)
}

// EventOrder assigns a sort position to one event block.
type EventOrder struct {
	ID        uuid.UUID `json:"id"`
	SortOrder int       `json:"sort_order"`
}
