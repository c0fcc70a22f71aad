package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanType selects the fair-weather or rain-contingency schedule track.
type PlanType string

const (
	PlanFair PlanType = "FAIR"
	PlanRain PlanType = "RAIN"
)

type EventBlock struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"not null" json:"description"`
	StartTime   time.Time  `gorm:"not null" json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Location    string     `gorm:"not null" json:"location"`
	PlanType    PlanType   `gorm:"not null;index" json:"plan_type"`
	SortOrder   int        `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (e *EventBlock) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
