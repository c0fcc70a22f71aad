package services

import (
	"crypto/subtle"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/flightline/rsvp-backend/internal/config"
	jwtpkg "github.com/flightline/rsvp-backend/pkg/jwt"
)

var ErrInvalidAdminPassword = errors.New("invalid password")

// AdminService authenticates the single shared-password administrator and
// issues admin-scoped tokens. ADMIN_PASSWORD may hold either a bcrypt hash
// or, for local setups, the plain password.
type AdminService struct {
	cfg *config.Config
}

func NewAdminService(cfg *config.Config) *AdminService {
	return &AdminService{cfg: cfg}
}

// Login checks the shared password and returns an admin token.
func (s *AdminService) Login(password string) (string, error) {
	configured := s.cfg.AdminPassword
	if configured == "" {
		zap.L().Warn("admin password not configured, admin login disabled")
		return "", ErrInvalidAdminPassword
	}

	if isBcryptHash(configured) {
		if err := bcrypt.CompareHashAndPassword([]byte(configured), []byte(password)); err != nil {
			return "", ErrInvalidAdminPassword
		}
	} else if subtle.ConstantTimeCompare([]byte(configured), []byte(password)) != 1 {
		return "", ErrInvalidAdminPassword
	}

	return jwtpkg.GenerateAdminToken(s.cfg.JWTSecret, s.cfg.AdminTokenDuration)
}

func isBcryptHash(value string) bool {
	return len(value) == 60 && (value[:4] == "$2a$" || value[:4] == "$2b$" || value[:4] == "$2y$")
}
