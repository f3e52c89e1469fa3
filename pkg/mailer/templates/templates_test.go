package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_AllTemplates(t *testing.T) {
	data := EmailData{
		Email:  "a@example.com",
		Method: "biometric",
		TimeAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, name := range []string{Welcome, LoginNotification, BiometricEnabled} {
		subject, text, html, err := Render(name, data)
		require.NoError(t, err, name)
		assert.Contains(t, subject, "Authmify", name)
		assert.NotContains(t, subject, "\n", name)
		assert.Contains(t, text, "a@example.com", name)
		assert.Contains(t, text, "01 March 2026, 12:00 UTC", name)
		assert.Contains(t, html, "<p>Hi a@example.com,</p>", name)
	}
}

func TestRender_EscapesHTML(t *testing.T) {
	_, text, html, err := Render(Welcome, EmailData{AppName: "X", Email: "<b>@example.com"})
	require.NoError(t, err)
	assert.Contains(t, text, "<b>@example.com")
	assert.Contains(t, html, "&lt;b&gt;@example.com")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", EmailData{})
	assert.Error(t, err)
}
