package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flightline/rsvp-backend/internal/config"
	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/phone"
	"github.com/flightline/rsvp-backend/internal/ratelimit"
	"github.com/flightline/rsvp-backend/internal/store"
	jwtpkg "github.com/flightline/rsvp-backend/pkg/jwt"
)

// Caller-visible outcomes. Everything a flow can fail with collapses into
// this closed set; internal detail stays in the server log.
var (
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrGuestNotFound     = errors.New("no registration found for this phone number")
	ErrAlreadyRegistered = errors.New("phone number already registered, use login")
	ErrInvalidCode       = errors.New("invalid code")
	ErrCodeStale         = errors.New("code expired, request a new one")
	ErrRateLimited       = errors.New("too many requests")
	ErrSendFailed        = errors.New("failed to send verification")
	ErrUnauthorized      = errors.New("unauthorized")
)

// AuthService orchestrates phone identity: registration, the OTP
// verify-and-unlock flow, the weaker phone-only login, and edit-token
// issuance. It holds no per-request state; the issued token is the only
// thing that outlives a flow.
type AuthService struct {
	store      store.Store
	gateway    ChallengeGateway
	normalizer *phone.Normalizer
	smsLimiter *ratelimit.Limiter
	cfg        *config.Config
}

func NewAuthService(st store.Store, gateway ChallengeGateway, normalizer *phone.Normalizer, smsLimiter *ratelimit.Limiter, cfg *config.Config) *AuthService {
	return &AuthService{
		store:      st,
		gateway:    gateway,
		normalizer: normalizer,
		smsLimiter: smsLimiter,
		cfg:        cfg,
	}
}

// RegisterGuest creates a guest for a not-yet-seen phone. A normalized phone
// that already exists is a conflict; the caller is redirected to login
// rather than silently handed the existing record.
func (s *AuthService) RegisterGuest(name, rawPhone, description string) (*models.Guest, error) {
	normalized, err := s.normalizer.Normalize(rawPhone)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	if _, err := s.store.GetGuestByPhone(normalized); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	guest := &models.Guest{
		Name:        name,
		Phone:       normalized,
		Description: description,
		PlusOnes:    1,
	}
	if err := s.store.CreateGuest(guest); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	return guest, nil
}

// PhoneLogin looks up a guest by normalized phone and mints an edit token
// without any possession proof. This is a deliberately weaker trust level;
// an unknown phone is a hard failure and never auto-creates an account.
func (s *AuthService) PhoneLogin(rawPhone string) (string, *models.Guest, error) {
	normalized, err := s.normalizer.Normalize(rawPhone)
	if err != nil {
		return "", nil, ErrInvalidPhone
	}

	guest, err := s.store.GetGuestByPhone(normalized)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrGuestNotFound
		}
		return "", nil, err
	}

	token, err := jwtpkg.GenerateEditToken(guest.ID.String(), s.cfg.JWTSecret, s.cfg.EditTokenDuration)
	if err != nil {
		return "", nil, err
	}
	return token, guest, nil
}

// StartVerification runs the send-code transition. A fresh phone, if
// supplied, is re-normalized and persisted onto the guest record before the
// challenge is sent. The SMS rate limit is keyed by hashed IP plus phone and
// is checked before any guest state is revealed or touched by the gateway.
func (s *AuthService) StartVerification(ctx context.Context, guestID uuid.UUID, rawPhone, ip string) error {
	guest, err := s.store.GetGuest(guestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrGuestNotFound
		}
		return err
	}

	target := guest.Phone
	if rawPhone != "" {
		normalized, err := s.normalizer.Normalize(rawPhone)
		if err != nil {
			return ErrInvalidPhone
		}
		target = normalized
	}

	ipHash := ratelimit.HashIP(s.cfg.IPHashSecret, ip)
	bucket := fmt.Sprintf("%s:%s", ipHash, target)
	allowed, _, _ := s.smsLimiter.Allow(ctx, bucket)
	if !allowed {
		return ErrRateLimited
	}

	if target != guest.Phone {
		// The new phone must not collide with another guest.
		if other, err := s.store.GetGuestByPhone(target); err == nil && other.ID != guestID {
			return ErrAlreadyRegistered
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if _, err := s.store.UpdateGuest(guestID, map[string]interface{}{"phone": target, "phone_verified": false}); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrAlreadyRegistered
			}
			return err
		}
	}

	if err := s.gateway.SendChallenge(ctx, guestID, target, ipHash); err != nil {
		zap.L().Error("challenge send failed", zap.String("guest_id", guestID.String()), zap.Error(err))
		return ErrSendFailed
	}
	return nil
}

// VerifyCode runs the submit-code transition. On acceptance the guest is
// marked verified and an edit token is minted; every rejection kind maps to
// one of two generic outcomes.
func (s *AuthService) VerifyCode(ctx context.Context, guestID uuid.UUID, code string) (string, *models.Guest, error) {
	guest, err := s.store.GetGuest(guestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrGuestNotFound
		}
		return "", nil, err
	}

	result, err := s.gateway.CheckChallenge(ctx, guestID, guest.Phone, code)
	if err != nil {
		zap.L().Error("challenge check failed", zap.String("guest_id", guestID.String()), zap.Error(err))
		return "", nil, ErrSendFailed
	}

	switch result {
	case CodeAccepted:
		// fall through to unlock
	case CodeExpired, CodeExhausted:
		zap.L().Info("code rejected", zap.String("guest_id", guestID.String()), zap.Int("kind", int(result)))
		return "", nil, ErrCodeStale
	default:
		zap.L().Info("code rejected", zap.String("guest_id", guestID.String()), zap.Int("kind", int(result)))
		return "", nil, ErrInvalidCode
	}

	now := time.Now().UTC()
	updated, err := s.store.UpdateGuest(guestID, map[string]interface{}{
		"phone_verified":   true,
		"last_verified_at": now,
	})
	if err != nil {
		return "", nil, err
	}

	token, err := jwtpkg.GenerateEditToken(guestID.String(), s.cfg.JWTSecret, s.cfg.EditTokenDuration)
	if err != nil {
		return "", nil, err
	}
	return token, updated, nil
}

// VerifySession resolves an edit token to its guest and the guest's joined
// RSVPs.
func (s *AuthService) VerifySession(token string) (*models.Guest, []models.Rsvp, error) {
	guestIDStr, err := jwtpkg.ValidateEditToken(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, nil, ErrUnauthorized
	}
	guestID, err := uuid.Parse(guestIDStr)
	if err != nil {
		return nil, nil, ErrUnauthorized
	}

	guest, err := s.store.GetGuest(guestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrGuestNotFound
		}
		return nil, nil, err
	}

	all, err := s.store.RsvpsByGuest(guestID)
	if err != nil {
		return nil, nil, err
	}
	joined := make([]models.Rsvp, 0, len(all))
	for _, r := range all {
		if r.Status == models.RsvpJoined {
			joined = append(joined, r)
		}
	}
	return guest, joined, nil
}
