package services

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/store"
)

// CodeResult classifies the outcome of a verification attempt. Callers
// outside this package collapse the rejection kinds into a generic outcome;
// the distinction is kept for logging and for the "request a new code" hint.
type CodeResult int

const (
	CodeAccepted CodeResult = iota
	CodeNotFound
	CodeConsumed
	CodeExpired
	CodeExhausted
	CodeMismatch
)

// Retriable reports whether submitting again against the same code can still
// succeed. Expired and exhausted codes require issuing a fresh one.
func (r CodeResult) Retriable() bool {
	return r == CodeMismatch
}

// VerificationService owns the lifecycle of self-issued one-time codes.
type VerificationService struct {
	store       store.Store
	ttl         time.Duration
	maxAttempts int
}

func NewVerificationService(st store.Store, ttl time.Duration, maxAttempts int) *VerificationService {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &VerificationService{store: st, ttl: ttl, maxAttempts: maxAttempts}
}

// Issue stores a fresh 6-digit code for the guest and purpose and returns
// it. Earlier outstanding codes are left in place; lookups always use the
// most recently issued one.
func (s *VerificationService) Issue(guestID uuid.UUID, phone, purpose, ipHash string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	record := &models.PhoneVerification{
		GuestID:   guestID,
		Phone:     phone,
		Code:      code,
		Purpose:   purpose,
		IPHash:    ipHash,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	if err := s.store.CreateVerification(record); err != nil {
		return "", err
	}
	return code, nil
}

// CheckLatest evaluates submitted against the most recently issued code.
// The checks are strictly ordered: consumed and expired short-circuit before
// the attempt counter is touched, so a late correct guess against a dead
// code never flips state.
func (s *VerificationService) CheckLatest(guestID uuid.UUID, purpose, submitted string) (CodeResult, error) {
	record, err := s.store.LatestVerification(guestID, purpose)
	if err != nil {
		if err == store.ErrNotFound {
			return CodeNotFound, nil
		}
		return CodeNotFound, err
	}

	if record.ConsumedAt != nil {
		return CodeConsumed, nil
	}
	if time.Now().UTC().After(record.ExpiresAt) {
		return CodeExpired, nil
	}
	if record.Attempts >= s.maxAttempts {
		return CodeExhausted, nil
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(submitted)) != 1 {
		if err := s.store.IncrementVerificationAttempts(record.ID); err != nil {
			return CodeMismatch, err
		}
		return CodeMismatch, nil
	}

	won, err := s.store.ConsumeVerification(record.ID, time.Now().UTC())
	if err != nil {
		return CodeMismatch, err
	}
	if !won {
		// A concurrent submission consumed it first.
		zap.L().Info("verification code lost consumption race",
			zap.String("guest_id", guestID.String()))
		return CodeConsumed, nil
	}
	return CodeAccepted, nil
}

// generateCode draws a uniform 6-digit code, leading zeros preserved.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
