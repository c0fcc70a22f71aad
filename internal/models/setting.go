package models

import "time"

// Setting keys used by the public landing page.
const (
	SettingEventTitle       = "EVENT_TITLE"
	SettingEventDescription = "EVENT_DESCRIPTION"
)

type Setting struct {
	Key       string    `gorm:"primary_key" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
