package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"readinglog/internal/models"
)

const (
	DefaultDataPath   = "_data/reading.yml"
	DefaultWindowDays = 84
	DefaultLogLevel   = "info"
)

// Config holds the application configuration
type Config struct {
	DataPath   string
	WindowDays int
	Today      time.Time // Zero means the current local date
	LogLevel   string

	// History storage configuration
	StoreHistory bool // If true, computed daily totals are saved to storage
	UseMockDB    bool

	// ClickHouse configuration
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	// Telegram notification configuration (optional)
	TelegramToken string
	NotifyChatIDs []int64
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{
		DataPath:   DefaultDataPath,
		WindowDays: DefaultWindowDays,
		LogLevel:   DefaultLogLevel,
	}

	if path := os.Getenv("READING_DATA_PATH"); path != "" {
		config.DataPath = path
	}

	if windowStr := os.Getenv("READING_WINDOW_DAYS"); windowStr != "" {
		window, err := ParseWindowDays(windowStr)
		if err != nil {
			return nil, fmt.Errorf("invalid READING_WINDOW_DAYS: %w", err)
		}
		config.WindowDays = window
	}

	if todayStr := os.Getenv("READING_TODAY"); todayStr != "" {
		today, err := ParseToday(todayStr)
		if err != nil {
			return nil, fmt.Errorf("invalid READING_TODAY: %w", err)
		}
		config.Today = today
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.LogLevel = strings.ToLower(level)
	}

	// History storage (default: disabled)
	config.StoreHistory = os.Getenv("STORE_HISTORY") == "true"
	config.UseMockDB = os.Getenv("USE_MOCK_DB") == "true"

	// ClickHouse configuration (required if storing history without mock)
	if config.StoreHistory && !config.UseMockDB {
		if err := LoadClickHouseFromEnv(config); err != nil {
			return nil, fmt.Errorf("%w (required when STORE_HISTORY is true and USE_MOCK_DB is not set)", err)
		}
	}

	// Telegram notifications are enabled by setting a token
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken != "" {
		idsStr := os.Getenv("NOTIFY_CHAT_IDS")
		if idsStr == "" {
			return nil, fmt.Errorf("NOTIFY_CHAT_IDS is required when TELEGRAM_BOT_TOKEN is set (comma-separated list of Telegram chat IDs)")
		}

		for _, idStr := range strings.Split(idsStr, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid chat ID in NOTIFY_CHAT_IDS: %s", idStr)
			}
			config.NotifyChatIDs = append(config.NotifyChatIDs, id)
		}
	}

	return config, nil
}

// LoadClickHouseFromEnv fills the ClickHouse connection settings from environment variables
func LoadClickHouseFromEnv(config *Config) error {
	config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
	if config.ClickHouseHost == "" {
		return fmt.Errorf("CLICKHOUSE_HOST is required")
	}

	portStr := os.Getenv("CLICKHOUSE_PORT")
	if portStr == "" {
		config.ClickHousePort = 9000 // Default ClickHouse native port
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
		}
		config.ClickHousePort = port
	}

	config.ClickHouseDatabase = os.Getenv("CLICKHOUSE_DATABASE")
	if config.ClickHouseDatabase == "" {
		config.ClickHouseDatabase = "default"
	}

	config.ClickHouseUser = os.Getenv("CLICKHOUSE_USER")
	if config.ClickHouseUser == "" {
		config.ClickHouseUser = "default"
	}

	config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
	// Password is optional, can be empty

	config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	return nil
}

// ParseWindowDays parses a positive number of days
func ParseWindowDays(s string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if days <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d", days)
	}
	return days, nil
}

// ParseToday parses a YYYY-MM-DD date
func ParseToday(s string) (time.Time, error) {
	today, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD: %w", err)
	}
	return today, nil
}

// ReferenceDate returns the configured date, or the current local date when unset
func (c *Config) ReferenceDate(now time.Time) time.Time {
	if !c.Today.IsZero() {
		return models.Day(c.Today)
	}
	return models.Day(now)
}
