package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "0 9 * * *", cfg.ReminderSchedule)
	assert.Equal(t, 2*time.Minute, cfg.ReminderTimeout)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.ReminderEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("REMINDER_ENABLED", "false")
	t.Setenv("REMINDER_TIMEOUT", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com,https://beta.example.com")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.ReminderEnabled)
	assert.Equal(t, 30*time.Second, cfg.ReminderTimeout)
	assert.Len(t, cfg.AllowedOrigins, 2)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REMINDER_ENABLED", "not-a-bool")
	t.Setenv("REMINDER_TIMEOUT", "not-a-duration")

	cfg := Load()

	assert.True(t, cfg.ReminderEnabled)
	assert.Equal(t, 2*time.Minute, cfg.ReminderTimeout)
}
