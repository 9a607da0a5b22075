package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("MEMORY_SEED_FILE", "dev/seed.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, "dev/seed.yaml", cfg.Postgres.SeedFile)
	assert.True(t, cfg.Notification.AutoNotify)
	assert.Equal(t, ChannelLog, cfg.Notification.Channel)
	assert.Equal(t, 10*time.Second, cfg.Notification.SendTimeout())
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/hiring")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("NOTIFY_AUTO", "false")
	t.Setenv("NOTIFY_CHANNEL", "webhook")
	t.Setenv("NOTIFY_WEBHOOK_URL", "http://mailer.local/send")
	t.Setenv("NOTIFY_WORKERS", "4")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.False(t, cfg.Notification.AutoNotify)
	assert.Equal(t, 4, cfg.Notification.Workers)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoad_InMemoryModeNeedsSeedFile(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("MEMORY_SEED_FILE", "")

	_, err := Load()
	assert.ErrorContains(t, err, "MEMORY_SEED_FILE")
}

func TestLoad_RejectsIncompleteChannel(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/hiring")
	t.Setenv("NOTIFY_CHANNEL", "webhook")
	t.Setenv("NOTIFY_WEBHOOK_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "NOTIFY_WEBHOOK_URL")

	t.Setenv("NOTIFY_CHANNEL", "carrier-pigeon")
	_, err = Load()
	assert.ErrorContains(t, err, "unknown NOTIFY_CHANNEL")
}

func TestLoad_BadInteger(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	assert.Error(t, err)
}
