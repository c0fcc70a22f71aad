package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flightline/rsvp-backend/internal/models"
)

// GormStore is the relational Store implementation.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Guests

func (s *GormStore) GetGuest(id uuid.UUID) (*models.Guest, error) {
	var guest models.Guest
	if err := s.db.First(&guest, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &guest, nil
}

func (s *GormStore) GetGuestByPhone(phone string) (*models.Guest, error) {
	var guest models.Guest
	if err := s.db.First(&guest, "phone = ?", phone).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &guest, nil
}

func (s *GormStore) ListGuests() ([]models.Guest, error) {
	var guests []models.Guest
	if err := s.db.Order("created_at asc").Find(&guests).Error; err != nil {
		return nil, err
	}
	return guests, nil
}

func (s *GormStore) CreateGuest(guest *models.Guest) error {
	if err := s.db.Create(guest).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *GormStore) UpdateGuest(id uuid.UUID, fields map[string]interface{}) (*models.Guest, error) {
	res := s.db.Model(&models.Guest{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetGuest(id)
}

// Verification codes

func (s *GormStore) CreateVerification(v *models.PhoneVerification) error {
	return s.db.Create(v).Error
}

func (s *GormStore) LatestVerification(guestID uuid.UUID, purpose string) (*models.PhoneVerification, error) {
	var record models.PhoneVerification
	err := s.db.Where("guest_id = ? AND purpose = ?", guestID, purpose).
		Order("created_at desc").
		First(&record).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &record, nil
}

func (s *GormStore) ConsumeVerification(id uuid.UUID, at time.Time) (bool, error) {
	// Conditional update so two concurrent correct submissions cannot both
	// win the consumption.
	res := s.db.Model(&models.PhoneVerification{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) IncrementVerificationAttempts(id uuid.UUID) error {
	return s.db.Model(&models.PhoneVerification{}).
		Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

// Event blocks

func (s *GormStore) ListEventBlocks() ([]models.EventBlock, error) {
	var blocks []models.EventBlock
	if err := s.db.Order("sort_order asc, start_time asc").Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (s *GormStore) GetEventBlock(id uuid.UUID) (*models.EventBlock, error) {
	var block models.EventBlock
	if err := s.db.First(&block, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &block, nil
}

func (s *GormStore) CreateEventBlock(block *models.EventBlock) error {
	return s.db.Create(block).Error
}

func (s *GormStore) UpdateEventBlock(id uuid.UUID, fields map[string]interface{}) (*models.EventBlock, error) {
	res := s.db.Model(&models.EventBlock{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetEventBlock(id)
}

func (s *GormStore) DeleteEventBlock(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_block_id = ?", id).Delete(&models.Rsvp{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.EventBlock{}, "id = ?", id).Error
	})
}

func (s *GormStore) ReorderEventBlocks(order []EventOrder) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order {
			if err := tx.Model(&models.EventBlock{}).
				Where("id = ?", item.ID).
				Update("sort_order", item.SortOrder).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RSVPs

func (s *GormStore) RsvpsByGuest(guestID uuid.UUID) ([]models.Rsvp, error) {
	var rsvps []models.Rsvp
	if err := s.db.Where("guest_id = ?", guestID).Find(&rsvps).Error; err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (s *GormStore) RsvpsByEvent(eventBlockID uuid.UUID) ([]models.Rsvp, error) {
	var rsvps []models.Rsvp
	if err := s.db.Where("event_block_id = ?", eventBlockID).Find(&rsvps).Error; err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (s *GormStore) ListRsvpsWithGuests() ([]models.RsvpWithGuest, error) {
	var rsvps []models.Rsvp
	if err := s.db.Find(&rsvps).Error; err != nil {
		return nil, err
	}
	var guests []models.Guest
	if err := s.db.Find(&guests).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Guest, len(guests))
	for i := range guests {
		byID[guests[i].ID] = &guests[i]
	}
	out := make([]models.RsvpWithGuest, 0, len(rsvps))
	for _, r := range rsvps {
		out = append(out, models.RsvpWithGuest{Rsvp: r, Guest: byID[r.GuestID]})
	}
	return out, nil
}

func (s *GormStore) UpsertRsvp(guestID, eventBlockID uuid.UUID, status models.RsvpStatus) (*models.Rsvp, error) {
	rsvp := models.Rsvp{
		GuestID:      guestID,
		EventBlockID: eventBlockID,
		Status:       status,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guest_id"}, {Name: "event_block_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()}),
	}).Create(&rsvp).Error
	if err != nil {
		return nil, err
	}
	var saved models.Rsvp
	if err := s.db.First(&saved, "guest_id = ? AND event_block_id = ?", guestID, eventBlockID).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &saved, nil
}

func (s *GormStore) DeleteRsvp(guestID, eventBlockID uuid.UUID) error {
	return s.db.Where("guest_id = ? AND event_block_id = ?", guestID, eventBlockID).
		Delete(&models.Rsvp{}).Error
}

// Settings

func (s *GormStore) GetSetting(key string) (*models.Setting, error) {
	var setting models.Setting
	if err := s.db.First(&setting, "key = ?", key).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &setting, nil
}

func (s *GormStore) UpsertSetting(key, value string) (*models.Setting, error) {
	setting := models.Setting{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
	}).Create(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Audit trail

func (s *GormStore) CreateAuditLog(entry *models.AuditLog) error {
	return s.db.Create(entry).Error
}

func (s *GormStore) ListAuditLogs(limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	if err := s.db.Order("created_at desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
