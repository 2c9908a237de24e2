// Package config loads and validates runtime configuration from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all daemon configuration.
type Config struct {
	// Catalog settings.
	CatalogPath string

	// Presentation pacing.
	TicksPerSecond int
	DayLength      float64 // seconds per full day cycle

	// Observation API.
	APIPort  int
	AdminKey string // Bearer token for control endpoints. Empty = disabled.

	// Burn-in run recording.
	DBPath string

	// Operational settings.
	LogLevel string
	Seed     int64 // 0 = derive from wall clock
}

// Load reads configuration from environment variables with defaults.
func Load() (Config, error) {
	cfg := Config{
		CatalogPath:    envStr("CASTAWAY_EVENTS", "events/events.json"),
		TicksPerSecond: envInt("CASTAWAY_TICK_RATE", 20),
		DayLength:      envFloat("CASTAWAY_DAY_LENGTH", 30*60),
		APIPort:        envInt("CASTAWAY_API_PORT", 8080),
		AdminKey:       envStr("CASTAWAY_ADMIN_KEY", ""),
		DBPath:         envStr("CASTAWAY_DB", "data/castaway.db"),
		LogLevel:       envStr("CASTAWAY_LOG_LEVEL", "info"),
		Seed:           envInt64("CASTAWAY_SEED", 0),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that configuration values are usable.
func (c Config) Validate() error {
	if c.CatalogPath == "" {
		return fmt.Errorf("config: CASTAWAY_EVENTS is required")
	}
	if c.TicksPerSecond <= 0 {
		return fmt.Errorf("config: CASTAWAY_TICK_RATE must be positive")
	}
	if c.DayLength <= 0 {
		return fmt.Errorf("config: CASTAWAY_DAY_LENGTH must be positive")
	}
	if c.APIPort < 0 || c.APIPort > 65535 {
		return fmt.Errorf("config: CASTAWAY_API_PORT out of range")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
