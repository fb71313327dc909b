package services

import (
	"testing"
	"time"

	"event-registration-platform/internal/config"
	"event-registration-platform/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSMTPService(t *testing.T) *SMTPNotificationService {
	t.Helper()

	service, err := NewSMTPNotificationService(config.SMTPConfig{
		Host:       "localhost",
		Port:       587,
		FromEmail:  "noreply@taakra.com",
		FromName:   "Taakra Events",
		AdminEmail: "contact@taakra2026.com",
	})
	require.NoError(t, err)
	return service
}

func TestEmailTemplatesParse(t *testing.T) {
	service := newTestSMTPService(t)
	assert.Len(t, service.templates, 4)
}

func TestRenderAdminNewRegistration(t *testing.T) {
	service := newTestSMTPService(t)

	registration := &models.EventRegistration{
		TeamName: "Foo",
		Members: []models.TeamMember{
			{Name: "Alice", Email: "a@x.com", UniversityName: "Test University"},
		},
		Modules:   []string{"AI"},
		CreatedAt: time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
	}
	event := &models.Event{Title: "Hack2026"}

	body, err := service.render("admin_new_registration", service.buildData(event, registration, map[string]int{"AI": 12}))
	require.NoError(t, err)

	assert.Contains(t, body, "Hack2026")
	assert.Contains(t, body, "Foo")
	assert.Contains(t, body, "a@x.com")
	assert.Contains(t, body, "Test University")
	assert.Contains(t, body, "12")
	assert.Contains(t, body, "2026-02-14 09:30:00")
}

func TestRenderTeamTemplates(t *testing.T) {
	service := newTestSMTPService(t)

	registration := &models.EventRegistration{
		TeamName: "Foo",
		Modules:  []string{"AI", "Web"},
	}
	event := &models.Event{Title: "Hack2026"}

	for _, name := range []string{"payment_pending", "registration_approved", "registration_rejected"} {
		body, err := service.render(name, service.buildData(event, registration, nil))
		require.NoError(t, err, name)
		assert.Contains(t, body, "Foo", name)
		assert.Contains(t, body, "Hack2026", name)
	}

	_, err := service.render("unknown", teamEmailData{})
	assert.Error(t, err)
}
