package services

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/ratelimit"
	"github.com/flightline/rsvp-backend/internal/store"
)

const defaultAuditLimit = 200

// AuditService records admin mutations. Recording is best effort: a failed
// write is logged and never fails the request that triggered it.
type AuditService struct {
	store        store.Store
	ipHashSecret string
}

func NewAuditService(st store.Store, ipHashSecret string) *AuditService {
	return &AuditService{store: st, ipHashSecret: ipHashSecret}
}

// Record writes one audit entry. The detail map is serialized to JSON; the
// caller address is hashed before storage.
func (s *AuditService) Record(action, targetType, targetID string, detail map[string]interface{}, ip string) {
	detailJSON := ""
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			detailJSON = string(b)
		}
	}
	entry := &models.AuditLog{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detailJSON,
		IPHash:     ratelimit.HashIP(s.ipHashSecret, ip),
	}
	if err := s.store.CreateAuditLog(entry); err != nil {
		zap.L().Error("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}

// List returns the newest entries, capped at limit (or a default cap when
// limit is not positive).
func (s *AuditService) List(limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > defaultAuditLimit {
		limit = defaultAuditLimit
	}
	return s.store.ListAuditLogs(limit)
}
