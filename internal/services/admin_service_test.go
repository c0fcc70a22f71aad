package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/flightline/rsvp-backend/internal/config"
	jwtpkg "github.com/flightline/rsvp-backend/pkg/jwt"
)

func adminConfig(password string) *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		AdminPassword:      password,
		AdminTokenDuration: time.Hour,
	}
}

func TestAdminLoginPlainPassword(t *testing.T) {
	svc := NewAdminService(adminConfig("hunter2"))

	token, err := svc.Login("hunter2")
	require.NoError(t, err)

	claims, err := jwtpkg.ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, jwtpkg.ScopeAdmin, claims.Scope)

	_, err = svc.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidAdminPassword)
}

func TestAdminLoginBcryptPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAdminService(adminConfig(string(hash)))

	_, err = svc.Login("hunter2")
	assert.NoError(t, err)

	_, err = svc.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidAdminPassword)
}

func TestAdminLoginDisabledWhenUnset(t *testing.T) {
	svc := NewAdminService(adminConfig(""))

	_, err := svc.Login("")
	assert.ErrorIs(t, err, ErrInvalidAdminPassword)
	_, err = svc.Login("anything")
	assert.ErrorIs(t, err, ErrInvalidAdminPassword)
}
