package services

import (
	"errors"

	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/store"
)

const (
	defaultEventTitle       = "Event Schedule"
	defaultEventDescription = "Browse the schedule and RSVP below."
)

// EventSettings is the public landing-page copy.
type EventSettings struct {
	EventTitle       string `json:"event_title"`
	EventDescription string `json:"event_description"`
}

type SettingService struct {
	store store.Store
}

func NewSettingService(st store.Store) *SettingService {
	return &SettingService{store: st}
}

// GetEventSettings returns the configured copy, falling back to defaults
// for keys that were never set.
func (s *SettingService) GetEventSettings() (*EventSettings, error) {
	out := &EventSettings{
		EventTitle:       defaultEventTitle,
		EventDescription: defaultEventDescription,
	}
	if setting, err := s.store.GetSetting(models.SettingEventTitle); err == nil {
		out.EventTitle = setting.Value
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if setting, err := s.store.GetSetting(models.SettingEventDescription); err == nil {
		out.EventDescription = setting.Value
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return out, nil
}

func (s *SettingService) UpdateEventSettings(title, description string) error {
	if title != "" {
		if _, err := s.store.UpsertSetting(models.SettingEventTitle, title); err != nil {
			return err
		}
	}
	if description != "" {
		if _, err := s.store.UpsertSetting(models.SettingEventDescription, description); err != nil {
			return err
		}
	}
	return nil
}
