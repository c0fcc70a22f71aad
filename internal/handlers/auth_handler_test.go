package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightline/rsvp-backend/internal/config"
	"github.com/flightline/rsvp-backend/internal/middleware"
	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/phone"
	"github.com/flightline/rsvp-backend/internal/ratelimit"
	"github.com/flightline/rsvp-backend/internal/services"
	"github.com/flightline/rsvp-backend/internal/store"
)

type authRouterFixture struct {
	router *gin.Engine
	st     *store.MemoryStore
	cfg    *config.Config
}

func newAuthRouter(t *testing.T) *authRouterFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		EditTokenDuration: time.Hour,
		IPHashSecret:      "ip-secret",
		CodeTTL:           10 * time.Minute,
		CodeMaxAttempts:   5,
		SMSRateLimit:      5,
		SMSRateWindow:     time.Hour,
		SMSProvider:       "log",
	}

	st := store.NewMemoryStore()
	codes := services.NewVerificationService(st, cfg.CodeTTL, cfg.CodeMaxAttempts)
	gateway := services.NewChallengeGateway(cfg, codes)
	smsLimiter := ratelimit.NewLimiter(rdb, "rl:sms", cfg.SMSRateLimit, cfg.SMSRateWindow)
	normalizer := phone.NewNormalizer("US", false)

	authService := services.NewAuthService(st, gateway, normalizer, smsLimiter, cfg)
	guestService := services.NewGuestService(st, normalizer)
	handler := NewAuthHandler(authService, guestService)

	router := gin.New()
	auth := router.Group("/api/auth")
	{
		auth.POST("/phone-login", handler.PhoneLogin)
		auth.POST("/start-verification", handler.StartVerification)
		auth.POST("/verify-code", handler.VerifyCode)
		auth.GET("/verify-session", handler.VerifySession)
		auth.PUT("/update-profile", middleware.EditAuth(cfg), handler.UpdateProfile)
	}
	return &authRouterFixture{router: router, st: st, cfg: cfg}
}

func (f *authRouterFixture) do(t *testing.T, method, path, token string, body gin.H) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *authRouterFixture) createGuest(t *testing.T) *models.Guest {
	t.Helper()
	guest := &models.Guest{Name: "Ada", Phone: "+16502530000"}
	require.NoError(t, f.st.CreateGuest(guest))
	return guest
}

func TestPhoneLoginHTTP(t *testing.T) {
	f := newAuthRouter(t)
	guest := f.createGuest(t)

	w := f.do(t, http.MethodPost, "/api/auth/phone-login", "", gin.H{"phone": "(650) 253-0000"})
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		EditToken string `json:"edit_token"`
		Guest     struct {
			ID string `json:"id"`
		} `json:"guest"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.EditToken)
	assert.Equal(t, guest.ID.String(), body.Guest.ID)
}

func TestPhoneLoginUnknownHTTP(t *testing.T) {
	f := newAuthRouter(t)

	w := f.do(t, http.MethodPost, "/api/auth/phone-login", "", gin.H{"phone": "+16502530000"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/phone-login", "", gin.H{"phone": "garbage"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/phone-login", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerificationFlowHTTP(t *testing.T) {
	f := newAuthRouter(t)
	guest := f.createGuest(t)

	w := f.do(t, http.MethodPost, "/api/auth/start-verification", "", gin.H{"guest_id": guest.ID.String()})
	require.Equal(t, http.StatusOK, w.Code)

	record, err := f.st.LatestVerification(guest.ID, models.PurposeEditProfile)
	require.NoError(t, err)

	// Shape failures reject before the code store sees them.
	w = f.do(t, http.MethodPost, "/api/auth/verify-code", "", gin.H{"guest_id": guest.ID.String(), "code": "12ab56"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fresh, err := f.st.LatestVerification(guest.ID, models.PurposeEditProfile)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Attempts)

	w = f.do(t, http.MethodPost, "/api/auth/verify-code", "", gin.H{"guest_id": guest.ID.String(), "code": record.Code})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		EditToken string `json:"edit_token"`
		Guest     struct {
			PhoneVerified bool `json:"phone_verified"`
		} `json:"guest"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.EditToken)
	assert.True(t, body.Guest.PhoneVerified)

	// The minted token drives the session endpoint.
	w = f.do(t, http.MethodGet, "/api/auth/verify-session", body.EditToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartVerificationUnknownGuestHTTP(t *testing.T) {
	f := newAuthRouter(t)

	w := f.do(t, http.MethodPost, "/api/auth/start-verification", "", gin.H{"guest_id": "1b671a64-40d5-491e-99b0-da01ff1f3341"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/start-verification", "", gin.H{"guest_id": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifySessionRequiresToken(t *testing.T) {
	f := newAuthRouter(t)

	w := f.do(t, http.MethodGet, "/api/auth/verify-session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/api/auth/verify-session", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfileHTTP(t *testing.T) {
	f := newAuthRouter(t)
	guest := f.createGuest(t)

	w := f.do(t, http.MethodPost, "/api/auth/phone-login", "", gin.H{"phone": guest.Phone})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		EditToken string `json:"edit_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = f.do(t, http.MethodPut, "/api/auth/update-profile", login.EditToken, gin.H{"name": "Ada Lovelace", "plus_ones": 3})
	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := f.st.GetGuest(guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.Name)
	assert.Equal(t, 3, stored.PlusOnes)

	// Out-of-range party size rejects the whole update.
	w = f.do(t, http.MethodPut, "/api/auth/update-profile", login.EditToken, gin.H{"plus_ones": 50})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No token at all.
	w = f.do(t, http.MethodPut, "/api/auth/update-profile", "", gin.H{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
