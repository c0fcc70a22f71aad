package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurposeEditProfile is the only challenge purpose currently issued.
const PurposeEditProfile = "edit-profile"

type PhoneVerification struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	GuestID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	Phone      string     `gorm:"not null;index"`
	Code       string     `gorm:"not null"`
	Purpose    string     `gorm:"not null;index;default:'edit-profile'"`
	IPHash     string     `gorm:"column:ip_hash"`
	ExpiresAt  time.Time  `gorm:"not null"`
	ConsumedAt *time.Time `gorm:"default:null"`
	Attempts   int        `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (p *PhoneVerification) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
