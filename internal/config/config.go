package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ricavi/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataBackend  string
	SQLiteDBPath string
	DataFile     string

	// Revenue rules
	Rooms              []string
	OvernightThreshold int64
	EntryScale         int64

	// Summary cache
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID string
	SyncInterval        time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ricavi.db"),
		DataFile:     getEnv("DATA_FILE", "./data/ricavi.json"),

		Rooms:              getEnvList("ROOMS"),
		OvernightThreshold: getEnvInt64("OVERNIGHT_THRESHOLD", core.DefaultOvernightThreshold),
		EntryScale:         getEnvInt64("ENTRY_SCALE", core.DefaultEntryScale),

		SummaryCacheSize: getEnvInt("SUMMARY_CACHE_SIZE", 24),
		SummaryCacheTTL:  getEnvDuration("SUMMARY_CACHE_TTL", 10*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ricavi"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "month_updates"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SyncInterval:        getEnvDuration("SYNC_INTERVAL", 30*time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Policy returns the amount policy configured for the parser.
func (c *Config) Policy() core.Policy {
	return core.Policy{
		EntryScale:         c.EntryScale,
		OvernightThreshold: c.OvernightThreshold,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	seen := make(map[string]bool, len(c.Rooms))
	for _, room := range c.Rooms {
		if seen[room] {
			errors = append(errors, fmt.Sprintf("duplicate room '%s' in ROOMS", room))
		}
		seen[room] = true
	}

	if err := c.Policy().Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid amount policy (ENTRY_SCALE=%d, OVERNIGHT_THRESHOLD=%d): scale must be at least 1 and threshold not negative", c.EntryScale, c.OvernightThreshold))
	}

	if c.SummaryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid summary cache size %d: must be at least 1", c.SummaryCacheSize))
	}
	if c.SummaryCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid summary cache TTL %v: must be at least 1 second", c.SummaryCacheTTL))
	}

	if c.SyncInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 minute", c.SyncInterval))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
