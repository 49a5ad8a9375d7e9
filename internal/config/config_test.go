package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8000), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultPageSize, cfg.API.PageSize)
	assert.Equal(t, DefaultMaxPageSize, cfg.API.MaxPageSize)
	assert.Equal(t, DefaultExpensiveBooksMinPrice, cfg.API.ExpensiveBooksMinPrice)
	assert.Equal(t, AuthModeNone, cfg.Auth.Mode)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
	assert.Equal(t, 15*time.Minute, cfg.Auth.RateLimitWindow)
	assert.True(t, cfg.Auth.SecureCookies)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
	assert.Equal(t, "0 3 * * *", cfg.Audit.CleanupSchedule)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, time.Hour, cfg.Tasks.CleanupInterval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Global.ReadOnly)
	assert.Empty(t, cfg.UI.TemplatesPath)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PATH", "/tmp/catalog.db")
	t.Setenv("API_PAGE_SIZE", "25")
	t.Setenv("EXPENSIVE_BOOKS_MIN_PRICE", "99.50")
	t.Setenv("AUTH_MODE", "local")
	t.Setenv("AUTH_SESSION_LIFETIME", "2h")
	t.Setenv("AUTH_SECURE_COOKIES", "false")
	t.Setenv("AUDIT_RETENTION_DAYS", "7")
	t.Setenv("TASKS_ENABLED", "false")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("READ_ONLY", "true")

	cfg := NewConfig()

	assert.Equal(t, int32(9090), cfg.HTTP.Port)
	assert.Equal(t, "/tmp/catalog.db", cfg.Database.Path)
	assert.Equal(t, 25, cfg.API.PageSize)
	assert.Equal(t, "99.50", cfg.API.ExpensiveBooksMinPrice)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionLifetime)
	assert.False(t, cfg.Auth.SecureCookies)
	assert.Equal(t, 7, cfg.Audit.RetentionDays)
	assert.False(t, cfg.Tasks.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Global.ReadOnly)
}
