package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenScope restricts what a token may be used for.
type TokenScope string

const (
	// ScopeEditProfile authorizes mutation of one guest's own data.
	ScopeEditProfile TokenScope = "edit-profile"
	// ScopeAdmin authorizes the admin surface.
	ScopeAdmin TokenScope = "admin"
)

// Claims represents the JWT claims
type Claims struct {
	GuestID string     `json:"guest_id,omitempty"`
	Scope   TokenScope `json:"scope"`
	jwt.RegisteredClaims
}

// GenerateEditToken mints the bearer credential that gates guest-owned
// mutations. It is stateless and unrevocable; the validity window bounds the
// blast radius of a leaked token.
func GenerateEditToken(guestID string, secret string, duration time.Duration) (string, error) {
	claims := Claims{
		GuestID: guestID,
		Scope:   ScopeEditProfile,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateAdminToken mints a token for the admin surface.
func GenerateAdminToken(secret string, duration time.Duration) (string, error) {
	claims := Claims{
		Scope: ScopeAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ValidateEditToken verifies signature and expiry and requires the
// edit-profile scope exactly, so future token types are never accepted by
// guest-mutation endpoints.
func ValidateEditToken(tokenString string, secret string) (string, error) {
	claims, err := ValidateToken(tokenString, secret)
	if err != nil {
		return "", err
	}
	if claims.Scope != ScopeEditProfile {
		return "", errors.New("invalid token scope")
	}
	if claims.GuestID == "" {
		return "", errors.New("invalid token")
	}
	return claims.GuestID, nil
}
