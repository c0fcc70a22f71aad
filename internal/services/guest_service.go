package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/phone"
	"github.com/flightline/rsvp-backend/internal/store"
	"github.com/flightline/rsvp-backend/pkg/validation"
)

// ErrValidation covers malformed profile input; it never reaches the store.
var ErrValidation = errors.New("validation failed")

// ProfileUpdate carries the optional fields of a profile mutation. Nil
// pointers leave the stored field untouched.
type ProfileUpdate struct {
	Name     *string
	Phone    *string
	PlusOnes *int
}

type GuestService struct {
	store      store.Store
	normalizer *phone.Normalizer
}

func NewGuestService(st store.Store, normalizer *phone.Normalizer) *GuestService {
	return &GuestService{store: st, normalizer: normalizer}
}

func (s *GuestService) GetGuest(id uuid.UUID) (*models.Guest, error) {
	guest, err := s.store.GetGuest(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	return guest, nil
}

func (s *GuestService) ListGuests() ([]models.Guest, error) {
	return s.store.ListGuests()
}

// UpdateProfile applies a partial update to the guest's own fields. The
// whole update is rejected before anything is written if any field fails
// validation.
func (s *GuestService) UpdateProfile(guestID uuid.UUID, update ProfileUpdate) (*models.Guest, error) {
	fields := make(map[string]interface{})

	if update.Name != nil {
		name := validation.SanitizeString(*update.Name)
		if !validation.ValidateName(name) {
			return nil, ErrValidation
		}
		fields["name"] = name
	}

	if update.Phone != nil {
		normalized, err := s.normalizer.Normalize(*update.Phone)
		if err != nil {
			return nil, ErrInvalidPhone
		}
		if other, err := s.store.GetGuestByPhone(normalized); err == nil && other.ID != guestID {
			return nil, ErrAlreadyRegistered
		}
		fields["phone"] = normalized
		// A changed phone has not been proven again.
		fields["phone_verified"] = false
	}

	if update.PlusOnes != nil {
		if !validation.ValidatePlusOnes(*update.PlusOnes) {
			return nil, ErrValidation
		}
		fields["plus_ones"] = *update.PlusOnes
	}

	if len(fields) == 0 {
		return s.GetGuest(guestID)
	}

	guest, err := s.store.UpdateGuest(guestID, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	return guest, nil
}

// UpdateDescription replaces the guest's bio text.
func (s *GuestService) UpdateDescription(guestID uuid.UUID, text string) (*models.Guest, error) {
	guest, err := s.store.UpdateGuest(guestID, map[string]interface{}{
		"description": validation.SanitizeString(text),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	return guest, nil
}
