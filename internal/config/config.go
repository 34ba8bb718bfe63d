package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	StorageSQLite     = "sqlite"
	StorageClickHouse = "clickhouse"
	StorageMock       = "mock"
)

// Session backends
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string
	AdminUserIDs  []int64
	NotifyChatID  int64 // 0 disables new-user notices

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)
	Port        string

	StorageBackend string
	SQLitePath     string

	// ClickHouse configuration
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SessionTTL     time.Duration

	StagingDir     string
	BroadcastDelay time.Duration
	Location       *time.Location
	LaunchDate     time.Time

	// GateChannelIndex checks a single registry channel at entry points
	// instead of the full registry. Nil means the full registry.
	GateChannelIndex *int

	LogLevel  string
	LogFormat string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// Admin User IDs (required)
	adminIDsStr := os.Getenv("ADMIN_USER_IDS")
	if adminIDsStr == "" {
		return nil, fmt.Errorf("ADMIN_USER_IDS is required (comma-separated list of Telegram user IDs)")
	}

	idStrs := strings.Split(adminIDsStr, ",")
	for _, idStr := range idStrs {
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID in ADMIN_USER_IDS: %s", idStr)
		}
		config.AdminUserIDs = append(config.AdminUserIDs, id)
	}

	if v := os.Getenv("NOTIFY_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFY_CHAT_ID: %w", err)
		}
		config.NotifyChatID = id
	}

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	config.Port = getEnv("PORT", "8080")

	// Storage backend (default: sqlite)
	config.StorageBackend = getEnv("STORAGE_BACKEND", StorageSQLite)
	switch config.StorageBackend {
	case StorageSQLite:
		config.SQLitePath = getEnv("SQLITE_PATH", "database.db")
	case StorageClickHouse:
		if err := loadClickHouse(config); err != nil {
			return nil, err
		}
	case StorageMock:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND: %s", config.StorageBackend)
	}

	// Session backend (default: memory)
	config.SessionBackend = getEnv("SESSION_BACKEND", SessionMemory)
	switch config.SessionBackend {
	case SessionMemory:
	case SessionRedis:
		config.RedisAddr = os.Getenv("REDIS_ADDR")
		if config.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when SESSION_BACKEND is redis")
		}
		config.RedisPassword = os.Getenv("REDIS_PASSWORD")
		db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		config.RedisDB = db
		ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		config.SessionTTL = ttl
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND: %s", config.SessionBackend)
	}

	config.StagingDir = getEnv("STAGING_DIR", "documents")

	delay, err := time.ParseDuration(getEnv("BROADCAST_DELAY", "50ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid BROADCAST_DELAY: %w", err)
	}
	if delay < 0 {
		return nil, fmt.Errorf("BROADCAST_DELAY must not be negative")
	}
	config.BroadcastDelay = delay

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Asia/Tashkent"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	config.Location = loc

	launch, err := time.ParseInLocation("2006-01-02", getEnv("LAUNCH_DATE", "2024-08-12"), loc)
	if err != nil {
		return nil, fmt.Errorf("invalid LAUNCH_DATE (expected YYYY-MM-DD): %w", err)
	}
	config.LaunchDate = launch

	if v := os.Getenv("GATE_CHANNEL_INDEX"); v != "" {
		index, err := strconv.Atoi(v)
		if err != nil || index < 0 {
			return nil, fmt.Errorf("invalid GATE_CHANNEL_INDEX: %s", v)
		}
		config.GateChannelIndex = &index
	}

	config.LogLevel = getEnv("LOG_LEVEL", "info")
	config.LogFormat = getEnv("LOG_FORMAT", "json")

	return config, nil
}

// loadClickHouse reads the ClickHouse connection settings
func loadClickHouse(config *Config) error {
	config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
	if config.ClickHouseHost == "" {
		return fmt.Errorf("CLICKHOUSE_HOST is required when STORAGE_BACKEND is clickhouse")
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

	config.ClickHouseDatabase = getEnv("CLICKHOUSE_DATABASE", "default")
	config.ClickHouseUser = getEnv("CLICKHOUSE_USER", "default")
	config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
	config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	return nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
