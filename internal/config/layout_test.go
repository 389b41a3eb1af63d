package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

func writeLayout(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.LayoutFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadLayout_Defaults(t *testing.T) {
	l, err := config.LoadLayout(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultLayout(), l)

	assert.Len(t, l.Sections, 3)
	assert.Equal(t, "in the cloud", l.Sections[1].TitleFilter)
	assert.True(t, l.Dates.Future)
	assert.False(t, l.Dates.Past)
	assert.Equal(t, config.DefaultBdayLimit, l.Birthdays.Limit)
	assert.True(t, l.Birthdays.ColleaguesOnly)
}

func TestLoadLayout_YAML(t *testing.T) {
	path := writeLayout(t, `
language: nl
refresh_interval: 15m
categories:
  powwow: false
dates:
  today: true
sections:
  - title: "Volgend evenement:"
    show_category: true
birthdays:
  limit: 5
  ages: true
`)

	l, err := config.LoadLayout(path)
	require.NoError(t, err)

	assert.Equal(t, "nl", l.Language)
	assert.Equal(t, 15*time.Minute, l.RefreshInterval)
	assert.False(t, l.Categories["powwow"])
	assert.True(t, l.Categories["training"], "unset keys keep their default")
	assert.True(t, l.Dates.Today)
	assert.True(t, l.Dates.Future)
	require.Len(t, l.Sections, 1)
	assert.Equal(t, "Volgend evenement:", l.Sections[0].Title)
	assert.Equal(t, 5, l.Birthdays.Limit)
	assert.True(t, l.Birthdays.Ages)
	assert.Equal(t, config.DefaultWebmailURL, l.WebmailURL)
}

func TestLoadLayout_Env(t *testing.T) {
	t.Setenv("SIOUX_BIRTHDAYS_LIMIT", "7")
	t.Setenv("SIOUX_REFRESH_INTERVAL", "2h")
	t.Setenv("SIOUX_WEBMAIL_URL", "https://mail.example")

	l, err := config.LoadLayout("")
	require.NoError(t, err)
	assert.Equal(t, 7, l.Birthdays.Limit)
	assert.Equal(t, 2*time.Hour, l.RefreshInterval)
	assert.Equal(t, "https://mail.example", l.WebmailURL)
}

func TestLoadLayout_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "sections: [\n"},
		{"negative limit", "birthdays:\n  limit: -1\n"},
		{"zero interval", "refresh_interval: 0s\n"},
		{"sub-second interval", "refresh_interval: 500ms\n"},
		{"unknown category", "categories:\n  karaoke: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadLayout(writeLayout(t, tt.content))
			assert.Error(t, err)
		})
	}
}
