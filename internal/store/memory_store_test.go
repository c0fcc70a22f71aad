package store

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightline/rsvp-backend/internal/models"
)

func TestConsumeVerificationSingleWinner(t *testing.T) {
	st := NewMemoryStore()
	v := &models.PhoneVerification{
		GuestID:   uuid.New(),
		Phone:     "+16502530000",
		Code:      "123456",
		Purpose:   models.PurposeEditProfile,
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}
	require.NoError(t, st.CreateVerification(v))

	var wg sync.WaitGroup
	wins := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := st.ConsumeVerification(v.ID, time.Now().UTC())
			assert.NoError(t, err)
			wins <- won
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	assert.Equal(t, 1, won, "exactly one consumer may win")

	record, err := st.LatestVerification(v.GuestID, models.PurposeEditProfile)
	require.NoError(t, err)
	assert.NotNil(t, record.ConsumedAt)
}

func TestLatestVerificationOrdering(t *testing.T) {
	st := NewMemoryStore()
	guestID := uuid.New()

	first := &models.PhoneVerification{GuestID: guestID, Code: "111111", Purpose: models.PurposeEditProfile, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, st.CreateVerification(first))
	time.Sleep(time.Millisecond)
	second := &models.PhoneVerification{GuestID: guestID, Code: "222222", Purpose: models.PurposeEditProfile, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, st.CreateVerification(second))

	latest, err := st.LatestVerification(guestID, models.PurposeEditProfile)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	_, err = st.LatestVerification(uuid.New(), models.PurposeEditProfile)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateGuestFields(t *testing.T) {
	st := NewMemoryStore()
	guest := &models.Guest{Name: "Ada", Phone: "+16502530000"}
	require.NoError(t, st.CreateGuest(guest))

	now := time.Now().UTC()
	updated, err := st.UpdateGuest(guest.ID, map[string]interface{}{
		"name":             "Ada L.",
		"plus_ones":        3,
		"phone_verified":   true,
		"last_verified_at": now,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, 3, updated.PlusOnes)
	assert.True(t, updated.PhoneVerified)
	require.NotNil(t, updated.LastVerifiedAt)
	assert.Equal(t, now, *updated.LastVerifiedAt)

	// Untouched fields survive.
	assert.Equal(t, "+16502530000", updated.Phone)

	_, err = st.UpdateGuest(uuid.New(), map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateGuestPhoneUnique(t *testing.T) {
	st := NewMemoryStore()
	ada := &models.Guest{Name: "Ada", Phone: "+16502530000"}
	require.NoError(t, st.CreateGuest(ada))
	grace := &models.Guest{Name: "Grace", Phone: "+16502530001"}
	require.NoError(t, st.CreateGuest(grace))

	_, err := st.UpdateGuest(grace.ID, map[string]interface{}{
		"name":  "Grace H.",
		"phone": "+16502530000",
	})
	assert.ErrorIs(t, err, ErrConflict)

	// The whole update is rejected, not just the phone field.
	stored, err := st.GetGuest(grace.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", stored.Name)
	assert.Equal(t, "+16502530001", stored.Phone)

	// Writing your own number back is not a conflict.
	_, err = st.UpdateGuest(grace.ID, map[string]interface{}{"phone": "+16502530001"})
	assert.NoError(t, err)
}

func TestGetGuestReturnsCopy(t *testing.T) {
	st := NewMemoryStore()
	guest := &models.Guest{Name: "Ada", Phone: "+16502530000"}
	require.NoError(t, st.CreateGuest(guest))

	got, err := st.GetGuest(guest.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := st.GetGuest(guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.Name)
}

func TestUpsertRsvpIdempotentPerPair(t *testing.T) {
	st := NewMemoryStore()
	guestID := uuid.New()
	eventID := uuid.New()

	first, err := st.UpsertRsvp(guestID, eventID, models.RsvpJoined)
	require.NoError(t, err)

	second, err := st.UpsertRsvp(guestID, eventID, models.RsvpDeclined)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same pair updates in place")
	assert.Equal(t, models.RsvpDeclined, second.Status)

	rsvps, err := st.RsvpsByGuest(guestID)
	require.NoError(t, err)
	require.Len(t, rsvps, 1)
	assert.Equal(t, models.RsvpDeclined, rsvps[0].Status)
}

func TestDeleteEventBlockCascades(t *testing.T) {
	st := NewMemoryStore()
	event := &models.EventBlock{Title: "Ceremony", StartTime: time.Now(), PlanType: models.PlanFair}
	require.NoError(t, st.CreateEventBlock(event))
	guestID := uuid.New()
	_, err := st.UpsertRsvp(guestID, event.ID, models.RsvpJoined)
	require.NoError(t, err)

	require.NoError(t, st.DeleteEventBlock(event.ID))

	_, err = st.GetEventBlock(event.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	rsvps, err := st.RsvpsByGuest(guestID)
	require.NoError(t, err)
	assert.Empty(t, rsvps)
}

func TestListEventBlocksSorted(t *testing.T) {
	st := NewMemoryStore()
	base := time.Now().UTC()

	b := &models.EventBlock{Title: "B", StartTime: base, SortOrder: 2, PlanType: models.PlanFair}
	a := &models.EventBlock{Title: "A", StartTime: base, SortOrder: 1, PlanType: models.PlanFair}
	require.NoError(t, st.CreateEventBlock(b))
	require.NoError(t, st.CreateEventBlock(a))

	blocks, err := st.ListEventBlocks()
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "A", blocks[0].Title)
	assert.Equal(t, "B", blocks[1].Title)

	require.NoError(t, st.ReorderEventBlocks([]EventOrder{
		{ID: a.ID, SortOrder: 5},
		{ID: b.ID, SortOrder: 1},
	}))
	blocks, err = st.ListEventBlocks()
	require.NoError(t, err)
	assert.Equal(t, "B", blocks[0].Title)
}

func TestSettingsUpsert(t *testing.T) {
	st := NewMemoryStore()

	_, err := st.GetSetting(models.SettingEventTitle)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.UpsertSetting(models.SettingEventTitle, "Our Wedding")
	require.NoError(t, err)
	_, err = st.UpsertSetting(models.SettingEventTitle, "Our Wedding Weekend")
	require.NoError(t, err)

	got, err := st.GetSetting(models.SettingEventTitle)
	require.NoError(t, err)
	assert.Equal(t, "Our Wedding Weekend", got.Value)
}
