package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightline/rsvp-backend/internal/store"
)

func TestGetEventSettingsDefaults(t *testing.T) {
	svc := NewSettingService(store.NewMemoryStore())

	settings, err := svc.GetEventSettings()
	require.NoError(t, err)
	assert.Equal(t, defaultEventTitle, settings.EventTitle)
	assert.Equal(t, defaultEventDescription, settings.EventDescription)
}

func TestUpdateEventSettings(t *testing.T) {
	svc := NewSettingService(store.NewMemoryStore())

	require.NoError(t, svc.UpdateEventSettings("Our Wedding", ""))

	settings, err := svc.GetEventSettings()
	require.NoError(t, err)
	assert.Equal(t, "Our Wedding", settings.EventTitle)
	assert.Equal(t, defaultEventDescription, settings.EventDescription, "empty input leaves the description at its default")

	require.NoError(t, svc.UpdateEventSettings("", "Saturday, June 20th"))
	settings, err = svc.GetEventSettings()
	require.NoError(t, err)
	assert.Equal(t, "Our Wedding", settings.EventTitle)
	assert.Equal(t, "Saturday, June 20th", settings.EventDescription)
}
