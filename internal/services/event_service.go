package services

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/store"
)

var ErrEventNotFound = errors.New("event not found")

// EventBlockInput is the admin-facing shape for creating or updating a
// schedule block.
type EventBlockInput struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description" binding:"required"`
	StartTime   time.Time        `json:"start_time" binding:"required"`
	EndTime     *time.Time       `json:"end_time"`
	Location    string           `json:"location" binding:"required"`
	PlanType    models.PlanType  `json:"plan_type" binding:"required,oneof=FAIR RAIN"`
	SortOrder   int              `json:"sort_order"`
}

type EventService struct {
	store store.Store
}

func NewEventService(st store.Store) *EventService {
	return &EventService{store: st}
}

// ListEventBlocks returns the full two-track schedule ordered by sort
// position.
func (s *EventService) ListEventBlocks() ([]models.EventBlock, error) {
	return s.store.ListEventBlocks()
}

func (s *EventService) GetEventBlock(id uuid.UUID) (*models.EventBlock, error) {
	block, err := s.store.GetEventBlock(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return block, nil
}

func (s *EventService) CreateEventBlock(input EventBlockInput) (*models.EventBlock, error) {
	block := &models.EventBlock{
		Title:       input.Title,
		Description: input.Description,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Location:    input.Location,
		PlanType:    input.PlanType,
		SortOrder:   input.SortOrder,
	}
	if err := s.store.CreateEventBlock(block); err != nil {
		return nil, err
	}
	return block, nil
}

func (s *EventService) UpdateEventBlock(id uuid.UUID, input EventBlockInput) (*models.EventBlock, error) {
	fields := map[string]interface{}{
		"title":       input.Title,
		"description": input.Description,
		"start_time":  input.StartTime,
		"location":    input.Location,
		"plan_type":   input.PlanType,
		"sort_order":  input.SortOrder,
	}
	if input.EndTime != nil {
		fields["end_time"] = *input.EndTime
	} else {
		fields["end_time"] = nil
	}
	block, err := s.store.UpdateEventBlock(id, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return block, nil
}

func (s *EventService) DeleteEventBlock(id uuid.UUID) error {
	return s.store.DeleteEventBlock(id)
}

func (s *EventService) ReorderEventBlocks(order []store.EventOrder) error {
	return s.store.ReorderEventBlocks(order)
}
