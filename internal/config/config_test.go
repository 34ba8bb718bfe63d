package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_USER_IDS", "1, 2")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, cfg.AdminUserIDs)
	assert.Zero(t, cfg.NotifyChatID)
	assert.False(t, cfg.WebhookMode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.StorageBackend)
	assert.Equal(t, "database.db", cfg.SQLitePath)
	assert.Equal(t, SessionMemory, cfg.SessionBackend)
	assert.Equal(t, "documents", cfg.StagingDir)
	assert.Equal(t, 50*time.Millisecond, cfg.BroadcastDelay)
	assert.Equal(t, "Asia/Tashkent", cfg.Location.String())
	assert.Equal(t, "2024-08-12", cfg.LaunchDate.Format("2006-01-02"))
	assert.Nil(t, cfg.GateChannelIndex)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFromEnv_Required(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("ADMIN_USER_IDS", "1")
	_, err := LoadFromEnv()
	assert.ErrorContains(t, err, "TELEGRAM_BOT_TOKEN")

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_USER_IDS", "")
	_, err = LoadFromEnv()
	assert.ErrorContains(t, err, "ADMIN_USER_IDS")

	t.Setenv("ADMIN_USER_IDS", "1,abc")
	_, err = LoadFromEnv()
	assert.ErrorContains(t, err, "invalid user ID")
}

func TestLoadFromEnv_Backends(t *testing.T) {
	setRequired(t)

	t.Setenv("STORAGE_BACKEND", "clickhouse")
	_, err := LoadFromEnv()
	assert.ErrorContains(t, err, "CLICKHOUSE_HOST")

	t.Setenv("CLICKHOUSE_HOST", "localhost")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ClickHousePort)
	assert.Equal(t, "default", cfg.ClickHouseDatabase)

	t.Setenv("STORAGE_BACKEND", "postgres")
	_, err = LoadFromEnv()
	assert.ErrorContains(t, err, "unknown STORAGE_BACKEND")

	t.Setenv("STORAGE_BACKEND", "mock")
	t.Setenv("SESSION_BACKEND", "redis")
	_, err = LoadFromEnv()
	assert.ErrorContains(t, err, "REDIS_ADDR")

	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SESSION_TTL", "2h")
	cfg, err = LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestLoadFromEnv_Webhook(t *testing.T) {
	setRequired(t)
	t.Setenv("WEBHOOK_MODE", "true")

	_, err := LoadFromEnv()
	assert.ErrorContains(t, err, "WEBHOOK_URL")

	t.Setenv("WEBHOOK_URL", "https://example.com")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.WebhookMode)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("NOTIFY_CHAT_ID", "-1002028043816")
	t.Setenv("GATE_CHANNEL_INDEX", "0")
	t.Setenv("BROADCAST_DELAY", "0s")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LAUNCH_DATE", "2025-01-02")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, int64(-1002028043816), cfg.NotifyChatID)
	require.NotNil(t, cfg.GateChannelIndex)
	assert.Equal(t, 0, *cfg.GateChannelIndex)
	assert.Zero(t, cfg.BroadcastDelay)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), cfg.LaunchDate)

	t.Setenv("GATE_CHANNEL_INDEX", "-1")
	_, err = LoadFromEnv()
	assert.Error(t, err)

	t.Setenv("GATE_CHANNEL_INDEX", "")
	t.Setenv("LAUNCH_DATE", "12/08/2024")
	_, err = LoadFromEnv()
	assert.ErrorContains(t, err, "LAUNCH_DATE")
}
