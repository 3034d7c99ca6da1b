package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplateUsesEmbeddedFiles(t *testing.T) {
	body, err := renderTemplate("event_reminder", map[string]interface{}{
		"event_title":  "Sunset Run",
		"display_name": "Member",
		"start_time":   "Wed, 01 May 2024 13:00:00 UTC",
		"event_url":    "https://pulsehub.test/events/1",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Sunset Run")
	assert.Contains(t, body, "Hi Member")
	assert.Contains(t, body, "https://pulsehub.test/events/1")

	_, err = renderTemplate("no_such_template", nil)
	assert.Error(t, err)
}

func TestSubjectForTemplate(t *testing.T) {
	assert.Equal(t, "Reminder: Sunset Run is starting soon",
		subjectFor("event_reminder", map[string]interface{}{"event_title": "Sunset Run"}))
	assert.Equal(t, "Your event is starting soon",
		subjectFor("event_reminder", map[string]interface{}{}))
	assert.Equal(t, "Your PulseHub receipt",
		subjectFor("purchase_receipt", map[string]interface{}{}))
	assert.Equal(t, "Booking update",
		subjectFor("event_reminder", map[string]interface{}{"subject": "Booking update"}))
	assert.Equal(t, "Notification from PulseHub", subjectFor("event_reminder", nil))
}
