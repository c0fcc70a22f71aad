package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RsvpStatus string

const (
	RsvpJoined   RsvpStatus = "JOINED"
	RsvpDeclined RsvpStatus = "DECLINED"
)

// Rsvp records one guest's answer for one event block. The (guest, event)
// pair is unique; repeated submissions overwrite the status.
type Rsvp struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	GuestID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_rsvp_guest_event" json:"guest_id"`
	EventBlockID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_rsvp_guest_event" json:"event_block_id"`
	Status       RsvpStatus `gorm:"not null" json:"status"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (r *Rsvp) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RsvpWithGuest is the admin roster projection.
type RsvpWithGuest struct {
	Rsvp
	Guest *Guest `json:"guest,omitempty"`
}
