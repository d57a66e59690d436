package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Table names (injected per deployment)
	Tables TableConfig

	// Registration engine tuning
	Engine EngineConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	// Event read cache
	EventDetailTTL time.Duration
	EventListTTL   time.Duration
}

// TableConfig holds the injected table names for the three collections
type TableConfig struct {
	Events        string
	Users         string
	Registrations string
}

// EngineConfig holds the registration engine's concurrency knobs
type EngineConfig struct {
	// Per store call
	StoreCallTimeout  time.Duration
	TransientAttempts int
	BackoffBase       time.Duration
	BackoffCap        time.Duration

	// Per engine operation
	OpTimeout   time.Duration
	RetryBudget int
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIPrefix:      getEnv("API_PREFIX", ""),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "gatherly_db"),
			User:     getEnv("DB_USER", "gatherly_user"),
			Password: getEnv("DB_PASSWORD", "gatherly_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			EventDetailTTL: getDurationEnv("REDIS_EVENT_DETAIL_TTL", 2*time.Minute),
			EventListTTL:   getDurationEnv("REDIS_EVENT_LIST_TTL", 30*time.Second),
		},

		Tables: TableConfig{
			Events:        getEnv("EVENTS_TABLE_NAME", "events"),
			Users:         getEnv("USERS_TABLE_NAME", "users"),
			Registrations: getEnv("REGISTRATIONS_TABLE_NAME", "registrations"),
		},

		Engine: EngineConfig{
			StoreCallTimeout:  getDurationEnv("STORE_CALL_TIMEOUT", 2*time.Second),
			TransientAttempts: getIntEnv("STORE_TRANSIENT_ATTEMPTS", 3),
			BackoffBase:       getDurationEnv("STORE_BACKOFF_BASE", 50*time.Millisecond),
			BackoffCap:        getDurationEnv("STORE_BACKOFF_CAP", 400*time.Millisecond),

			OpTimeout:   getDurationEnv("ENGINE_OP_TIMEOUT", 5*time.Second),
			RetryBudget: getIntEnv("ENGINE_RETRY_BUDGET", 5),
		},

		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}
