package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/store"
)

type RsvpService struct {
	store store.Store
}

func NewRsvpService(st store.Store) *RsvpService {
	return &RsvpService{store: st}
}

// Upsert records or overwrites one guest's answer for one event block. Both
// sides of the association must exist.
func (s *RsvpService) Upsert(guestID, eventBlockID uuid.UUID, status models.RsvpStatus) (*models.Rsvp, error) {
	if _, err := s.store.GetGuest(guestID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	if _, err := s.store.GetEventBlock(eventBlockID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return s.store.UpsertRsvp(guestID, eventBlockID, status)
}

func (s *RsvpService) ByGuest(guestID uuid.UUID) ([]models.Rsvp, error) {
	return s.store.RsvpsByGuest(guestID)
}

func (s *RsvpService) ByEvent(eventBlockID uuid.UUID) ([]models.Rsvp, error) {
	return s.store.RsvpsByEvent(eventBlockID)
}

// Roster returns every RSVP joined with its guest for the admin view.
func (s *RsvpService) Roster() ([]models.RsvpWithGuest, error) {
	return s.store.ListRsvpsWithGuests()
}

func (s *RsvpService) Delete(guestID, eventBlockID uuid.UUID) error {
	return s.store.DeleteRsvp(guestID, eventBlockID)
}
