package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flightline/rsvp-backend/internal/models"
)

// MemoryStore is the map-backed Store used by tests and local development.
// All methods are safe for concurrent use; a single mutex is enough at the
// expected load.
type MemoryStore struct {
	mu            sync.Mutex
	guests        map[uuid.UUID]*models.Guest
	verifications map[uuid.UUID]*models.PhoneVerification
	events        map[uuid.UUID]*models.EventBlock
	rsvps         map[uuid.UUID]*models.Rsvp
	settings      map[string]*models.Setting
	auditLogs     []models.AuditLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		guests:        make(map[uuid.UUID]*models.Guest),
		verifications: make(map[uuid.UUID]*models.PhoneVerification),
		events:        make(map[uuid.UUID]*models.EventBlock),
		rsvps:         make(map[uuid.UUID]*models.Rsvp),
		settings:      make(map[string]*models.Setting),
	}
}

// Guests

func (s *MemoryStore) GetGuest(id uuid.UUID) (*models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	guest, ok := s.guests[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *guest
	return &copied, nil
}

func (s *MemoryStore) GetGuestByPhone(phone string) (*models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, guest := range s.guests {
		if guest.Phone == phone {
			copied := *guest
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListGuests() ([]models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Guest, 0, len(s.guests))
	for _, guest := range s.guests {
		out = append(out, *guest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CreateGuest(guest *models.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	now := time.Now().UTC()
	guest.CreatedAt = now
	guest.UpdatedAt = now
	if guest.PlusOnes == 0 {
		guest.PlusOnes = 1
	}
	copied := *guest
	s.guests[guest.ID] = &copied
	return nil
}

func (s *MemoryStore) UpdateGuest(id uuid.UUID, fields map[string]interface{}) (*models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	guest, ok := s.guests[id]
	if !ok {
		return nil, ErrNotFound
	}
	// Uniqueness is checked before any field is written so a rejected
	// update leaves the record untouched.
	if value, ok := fields["phone"]; ok {
		phone := value.(string)
		for _, other := range s.guests {
			if other.ID != id && other.Phone == phone {
				return nil, ErrConflict
			}
		}
	}
	for key, value := range fields {
		switch key {
		case "name":
			guest.Name = value.(string)
		case "phone":
			guest.Phone = value.(string)
		case "description":
			guest.Description = value.(string)
		case "plus_ones":
			guest.PlusOnes = toInt(value)
		case "phone_verified":
			guest.PhoneVerified = value.(bool)
		case "last_verified_at":
			t := value.(time.Time)
			guest.LastVerifiedAt = &t
		}
	}
	guest.UpdatedAt = time.Now().UTC()
	copied := *guest
	return &copied, nil
}

// Verification codes

func (s *MemoryStore) CreateVerification(v *models.PhoneVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	copied := *v
	s.verifications[v.ID] = &copied
	return nil
}

func (s *MemoryStore) LatestVerification(guestID uuid.UUID, purpose string) (*models.PhoneVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.PhoneVerification
	for _, v := range s.verifications {
		if v.GuestID != guestID || !strings.EqualFold(v.Purpose, purpose) {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (s *MemoryStore) ConsumeVerification(id uuid.UUID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.verifications[id]
	if !ok {
		return false, ErrNotFound
	}
	if v.ConsumedAt != nil {
		return false, nil
	}
	consumed := at
	v.ConsumedAt = &consumed
	v.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *MemoryStore) IncrementVerificationAttempts(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.verifications[id]
	if !ok {
		return ErrNotFound
	}
	v.Attempts++
	v.UpdatedAt = time.Now().UTC()
	return nil
}

// Event blocks

func (s *MemoryStore) ListEventBlocks() ([]models.EventBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.EventBlock, 0, len(s.events))
	for _, block := range s.events {
		out = append(out, *block)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (s *MemoryStore) GetEventBlock(id uuid.UUID) (*models.EventBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	block, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *block
	return &copied, nil
}

func (s *MemoryStore) CreateEventBlock(block *models.EventBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if block.ID == uuid.Nil {
		block.ID = uuid.New()
	}
	now := time.Now().UTC()
	block.CreatedAt = now
	block.UpdatedAt = now
	copied := *block
	s.events[block.ID] = &copied
	return nil
}

func (s *MemoryStore) UpdateEventBlock(id uuid.UUID, fields map[string]interface{}) (*models.EventBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	block, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "title":
			block.Title = value.(string)
		case "description":
			block.Description = value.(string)
		case "start_time":
			block.StartTime = value.(time.Time)
		case "end_time":
			if value == nil {
				block.EndTime = nil
			} else {
				t := value.(time.Time)
				block.EndTime = &t
			}
		case "location":
			block.Location = value.(string)
		case "plan_type":
			block.PlanType = value.(models.PlanType)
		case "sort_order":
			block.SortOrder = toInt(value)
		}
	}
	block.UpdatedAt = time.Now().UTC()
	copied := *block
	return &copied, nil
}

func (s *MemoryStore) DeleteEventBlock(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
	for rid, r := range s.rsvps {
		if r.EventBlockID == id {
			delete(s.rsvps, rid)
		}
	}
	return nil
}

func (s *MemoryStore) ReorderEventBlocks(order []EventOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range order {
		if block, ok := s.events[item.ID]; ok {
			block.SortOrder = item.SortOrder
			block.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

// RSVPs

func (s *MemoryStore) RsvpsByGuest(guestID uuid.UUID) ([]models.Rsvp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Rsvp
	for _, r := range s.rsvps {
		if r.GuestID == guestID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *MemoryStore) RsvpsByEvent(eventBlockID uuid.UUID) ([]models.Rsvp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Rsvp
	for _, r := range s.rsvps {
		if r.EventBlockID == eventBlockID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListRsvpsWithGuests() ([]models.RsvpWithGuest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.RsvpWithGuest, 0, len(s.rsvps))
	for _, r := range s.rsvps {
		item := models.RsvpWithGuest{Rsvp: *r}
		if guest, ok := s.guests[r.GuestID]; ok {
			copied := *guest
			item.Guest = &copied
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *MemoryStore) UpsertRsvp(guestID, eventBlockID uuid.UUID, status models.RsvpStatus) (*models.Rsvp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rsvps {
		if r.GuestID == guestID && r.EventBlockID == eventBlockID {
			r.Status = status
			r.UpdatedAt = time.Now().UTC()
			copied := *r
			return &copied, nil
		}
	}
	now := time.Now().UTC()
	rsvp := &models.Rsvp{
		ID:           uuid.New(),
		GuestID:      guestID,
		EventBlockID: eventBlockID,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.rsvps[rsvp.ID] = rsvp
	copied := *rsvp
	return &copied, nil
}

func (s *MemoryStore) DeleteRsvp(guestID, eventBlockID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.rsvps {
		if r.GuestID == guestID && r.EventBlockID == eventBlockID {
			delete(s.rsvps, id)
		}
	}
	return nil
}

// Settings

func (s *MemoryStore) GetSetting(key string) (*models.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	setting, ok := s.settings[key]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *setting
	return &copied, nil
}

func (s *MemoryStore) UpsertSetting(key, value string) (*models.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	setting := &models.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	s.settings[key] = setting
	copied := *setting
	return &copied, nil
}

// Audit trail

func (s *MemoryStore) CreateAuditLog(entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now().UTC()
	s.auditLogs = append(s.auditLogs, *entry)
	return nil
}

func (s *MemoryStore) ListAuditLogs(limit int) ([]models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuditLog, len(s.auditLogs))
	copy(out, s.auditLogs)
	// Newest first.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func toInt(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
