package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"READING_DATA_PATH", "READING_WINDOW_DAYS", "READING_TODAY", "LOG_LEVEL",
	"STORE_HISTORY", "USE_MOCK_DB",
	"CLICKHOUSE_HOST", "CLICKHOUSE_PORT", "CLICKHOUSE_DATABASE", "CLICKHOUSE_USER",
	"CLICKHOUSE_PASSWORD", "CLICKHOUSE_USE_TLS",
	"TELEGRAM_BOT_TOKEN", "NOTIFY_CHAT_IDS",
}

// clearEnv blanks every variable the loader reads, so the host environment does not leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultDataPath, cfg.DataPath)
	assert.Equal(t, DefaultWindowDays, cfg.WindowDays)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.True(t, cfg.Today.IsZero())
	assert.False(t, cfg.StoreHistory)
	assert.Empty(t, cfg.TelegramToken)
	assert.Empty(t, cfg.NotifyChatIDs)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("READING_DATA_PATH", "/tmp/reading.yml")
	t.Setenv("READING_WINDOW_DAYS", "28")
	t.Setenv("READING_TODAY", "2024-01-10")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/reading.yml", cfg.DataPath)
	assert.Equal(t, 28, cfg.WindowDays)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), cfg.Today)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromEnv_ClickHouse(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_HISTORY", "true")
	t.Setenv("CLICKHOUSE_HOST", "ch.local")
	t.Setenv("CLICKHOUSE_USE_TLS", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.StoreHistory)
	assert.Equal(t, "ch.local", cfg.ClickHouseHost)
	assert.Equal(t, 9000, cfg.ClickHousePort)
	assert.Equal(t, "default", cfg.ClickHouseDatabase)
	assert.Equal(t, "default", cfg.ClickHouseUser)
	assert.True(t, cfg.ClickHouseUseTLS)
}

func TestLoadFromEnv_MockDBNeedsNoHost(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_HISTORY", "true")
	t.Setenv("USE_MOCK_DB", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.UseMockDB)
	assert.Empty(t, cfg.ClickHouseHost)
}

func TestLoadFromEnv_Telegram(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("NOTIFY_CHAT_IDS", "123, -456")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []int64{123, -456}, cfg.NotifyChatIDs)
}

func TestLoadFromEnv_Errors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "window not a number", env: map[string]string{"READING_WINDOW_DAYS": "twelve"}},
		{name: "window zero", env: map[string]string{"READING_WINDOW_DAYS": "0"}},
		{name: "bad today", env: map[string]string{"READING_TODAY": "10/01/2024"}},
		{name: "history without host", env: map[string]string{"STORE_HISTORY": "true"}},
		{name: "bad port", env: map[string]string{"STORE_HISTORY": "true", "CLICKHOUSE_HOST": "h", "CLICKHOUSE_PORT": "x"}},
		{name: "token without chats", env: map[string]string{"TELEGRAM_BOT_TOKEN": "token"}},
		{name: "bad chat id", env: map[string]string{"TELEGRAM_BOT_TOKEN": "token", "NOTIFY_CHAT_IDS": "1,abc"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestConfig_ReferenceDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	cfg := &Config{}
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), cfg.ReferenceDate(now))

	cfg.Today = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, cfg.Today, cfg.ReferenceDate(now))
}
