package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.GetServerAddress())
	assert.NotEmpty(t, cfg.JWT.Secret, "development gets a fallback secret")
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiry)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.Escalation.SchedulerEnabled)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "1h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("NATS_ENABLED", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	assert.True(t, cfg.NATS.Enabled)
	assert.Contains(t, cfg.GetDatabaseDSN(), "dbname=complaints")
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_TelegramNeedsCredentials(t *testing.T) {
	t.Setenv("TELEGRAM_ENABLED", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_SchedulerNeedsActor(t *testing.T) {
	t.Setenv("ESCALATION_SCHEDULER_ENABLED", "true")
	t.Setenv("ESCALATION_ACTOR_EMAIL", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("ESCALATION_ACTOR_EMAIL", "ops@example.com")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", cfg.Escalation.ActorEmail)
}

func TestIsDepartment(t *testing.T) {
	assert.True(t, IsDepartment("IT"))
	assert.True(t, IsDepartment("Operations"))
	assert.False(t, IsDepartment("it"))
	assert.False(t, IsDepartment(""))
}

func TestNormalizePage(t *testing.T) {
	page, limit := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, limit)

	page, limit = NormalizePage(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, limit)
}
