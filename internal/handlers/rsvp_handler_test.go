package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightline/rsvp-backend/internal/config"
	"github.com/flightline/rsvp-backend/internal/middleware"
	"github.com/flightline/rsvp-backend/internal/models"
	"github.com/flightline/rsvp-backend/internal/services"
	"github.com/flightline/rsvp-backend/internal/store"
	jwtpkg "github.com/flightline/rsvp-backend/pkg/jwt"
)

type rsvpRouterFixture struct {
	router *gin.Engine
	st     *store.MemoryStore
	cfg    *config.Config
	guest  *models.Guest
	event  *models.EventBlock
}

func newRsvpRouter(t *testing.T) *rsvpRouterFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWTSecret: "test-secret", EditTokenDuration: time.Hour}
	st := store.NewMemoryStore()

	guest := &models.Guest{Name: "Ada", Phone: "+16502530000"}
	require.NoError(t, st.CreateGuest(guest))
	event := &models.EventBlock{Title: "Ceremony", StartTime: time.Now().UTC(), PlanType: models.PlanFair}
	require.NoError(t, st.CreateEventBlock(event))

	handler := NewRsvpHandler(services.NewRsvpService(st))
	router := gin.New()
	router.POST("/api/rsvp", middleware.EditAuth(cfg), handler.Upsert)
	router.GET("/api/rsvp/guest/:guestId", handler.ByGuest)

	return &rsvpRouterFixture{router: router, st: st, cfg: cfg, guest: guest, event: event}
}

func (f *rsvpRouterFixture) editToken(t *testing.T, guestID string) string {
	t.Helper()
	token, err := jwtpkg.GenerateEditToken(guestID, f.cfg.JWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (f *rsvpRouterFixture) postRsvp(t *testing.T, token string, body gin.H) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/rsvp", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRsvpUpsertHTTP(t *testing.T) {
	f := newRsvpRouter(t)
	token := f.editToken(t, f.guest.ID.String())

	w := f.postRsvp(t, token, gin.H{
		"guest_id":       f.guest.ID.String(),
		"event_block_id": f.event.ID.String(),
		"status":         "JOINED",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	rsvps, err := f.st.RsvpsByGuest(f.guest.ID)
	require.NoError(t, err)
	require.Len(t, rsvps, 1)
	assert.Equal(t, models.RsvpJoined, rsvps[0].Status)
}

func TestRsvpUpsertRequiresToken(t *testing.T) {
	f := newRsvpRouter(t)

	w := f.postRsvp(t, "", gin.H{
		"guest_id":       f.guest.ID.String(),
		"event_block_id": f.event.ID.String(),
		"status":         "JOINED",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRsvpUpsertRejectsOtherGuest(t *testing.T) {
	f := newRsvpRouter(t)
	other := &models.Guest{Name: "Grace", Phone: "+16502530001"}
	require.NoError(t, f.st.CreateGuest(other))

	// Token belongs to Ada; the body claims Grace's answer.
	token := f.editToken(t, f.guest.ID.String())
	w := f.postRsvp(t, token, gin.H{
		"guest_id":       other.ID.String(),
		"event_block_id": f.event.ID.String(),
		"status":         "JOINED",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	rsvps, err := f.st.RsvpsByGuest(other.ID)
	require.NoError(t, err)
	assert.Empty(t, rsvps)
}

func TestRsvpUpsertRejectsBadStatus(t *testing.T) {
	f := newRsvpRouter(t)
	token := f.editToken(t, f.guest.ID.String())

	w := f.postRsvp(t, token, gin.H{
		"guest_id":       f.guest.ID.String(),
		"event_block_id": f.event.ID.String(),
		"status":         "MAYBE",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRsvpByGuestHTTP(t *testing.T) {
	f := newRsvpRouter(t)
	_, err := f.st.UpsertRsvp(f.guest.ID, f.event.ID, models.RsvpDeclined)
	require.NoError(t, err)

	url := fmt.Sprintf("/api/rsvp/guest/%s", f.guest.ID)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Rsvps []models.Rsvp `json:"rsvps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Rsvps, 1)
	assert.Equal(t, models.RsvpDeclined, body.Rsvps[0].Status)
}
