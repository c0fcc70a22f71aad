package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Guest struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Name           string     `gorm:"not null" json:"name"`
	Phone          string     `gorm:"uniqueIndex;not null" json:"phone"`
	PhoneVerified  bool       `gorm:"default:false" json:"phone_verified"`
	Description    string     `json:"description,omitempty"`
	PlusOnes       int        `gorm:"default:1" json:"plus_ones"`
	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Rsvps []Rsvp `gorm:"foreignKey:GuestID" json:"rsvps,omitempty"`
}

func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
