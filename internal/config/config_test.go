package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norddeich/castaway/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "events/events.json", cfg.CatalogPath)
	assert.Equal(t, 20, cfg.TicksPerSecond)
	assert.Equal(t, 1800.0, cfg.DayLength)
	assert.Equal(t, 8080, cfg.APIPort)
	assert.Empty(t, cfg.AdminKey)
	assert.Equal(t, "data/castaway.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(0), cfg.Seed)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CASTAWAY_EVENTS", "/opt/castaway/catalog.json")
	t.Setenv("CASTAWAY_TICK_RATE", "60")
	t.Setenv("CASTAWAY_DAY_LENGTH", "600")
	t.Setenv("CASTAWAY_API_PORT", "9090")
	t.Setenv("CASTAWAY_ADMIN_KEY", "sekrit")
	t.Setenv("CASTAWAY_DB", "/var/lib/castaway/runs.db")
	t.Setenv("CASTAWAY_LOG_LEVEL", "debug")
	t.Setenv("CASTAWAY_SEED", "424242")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/opt/castaway/catalog.json", cfg.CatalogPath)
	assert.Equal(t, 60, cfg.TicksPerSecond)
	assert.Equal(t, 600.0, cfg.DayLength)
	assert.Equal(t, 9090, cfg.APIPort)
	assert.Equal(t, "sekrit", cfg.AdminKey)
	assert.Equal(t, "/var/lib/castaway/runs.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(424242), cfg.Seed)
}

func TestUnparsableValuesFallBack(t *testing.T) {
	t.Setenv("CASTAWAY_TICK_RATE", "fast")
	t.Setenv("CASTAWAY_DAY_LENGTH", "half an hour")
	t.Setenv("CASTAWAY_SEED", "1.5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.TicksPerSecond)
	assert.Equal(t, 1800.0, cfg.DayLength)
	assert.Equal(t, int64(0), cfg.Seed)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"non-positive tick rate", "CASTAWAY_TICK_RATE", "-5"},
		{"non-positive day length", "CASTAWAY_DAY_LENGTH", "0"},
		{"port out of range", "CASTAWAY_API_PORT", "70000"},
		{"negative port", "CASTAWAY_API_PORT", "-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := config.Config{
		CatalogPath:    "events/events.json",
		TicksPerSecond: 20,
		DayLength:      1800,
		APIPort:        0,
	}
	assert.NoError(t, valid.Validate(), "port 0 disables the API and is valid")

	missing := valid
	missing.CatalogPath = ""
	assert.Error(t, missing.Validate())
}
