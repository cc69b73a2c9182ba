// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/utils"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Directory holding the booking store (always absolute)
	BookingsCSV     string // Bookings export imported on startup and on refresh
	RulesFile       string // YAML business rules; empty means built-in rules
	Cutoff          domain.YearMonth
	RefreshSchedule string // Cron schedule for re-importing BookingsCSV; empty disables it
	CORSOrigins     []string
	LogLevel        string
	Port            int
	DevMode         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("RENTBOARD_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         dataDir,
		BookingsCSV:     getEnv("RENTBOARD_BOOKINGS_CSV", ""),
		RulesFile:       getEnv("RENTBOARD_RULES_FILE", ""),
		RefreshSchedule: getEnv("RENTBOARD_REFRESH_SCHEDULE", ""),
		CORSOrigins:     utils.ParseCSV(getEnv("RENTBOARD_CORS_ORIGINS", "*")),
		Port:            getEnvAsInt("GO_PORT", 8001),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if cutoff := getEnv("RENTBOARD_CUTOFF", ""); cutoff != "" {
		cfg.Cutoff, err = domain.ParseYearMonth(cutoff)
		if err != nil {
			return nil, fmt.Errorf("RENTBOARD_CUTOFF: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabasePath returns the path of the booking store
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "bookings.db")
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT must be between 1 and 65535, got %d", c.Port)
	}

	if c.RefreshSchedule != "" {
		if c.BookingsCSV == "" {
			return fmt.Errorf("RENTBOARD_REFRESH_SCHEDULE requires RENTBOARD_BOOKINGS_CSV")
		}
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid RENTBOARD_REFRESH_SCHEDULE %q: %w", c.RefreshSchedule, err)
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
