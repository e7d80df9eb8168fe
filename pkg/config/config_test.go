package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.BaseURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HA_GUARD_BASE_URL", "http://homeassistant.local:8123")
	t.Setenv("HA_GUARD_TOKEN", "secret")
	t.Setenv("HA_GUARD_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://homeassistant.local:8123", cfg.BaseURL)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout, "untouched settings keep defaults")
}

func TestRequireLive(t *testing.T) {
	cfg := Default()
	err := cfg.RequireLive()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BASE_URL")

	cfg.BaseURL = "http://homeassistant.local:8123"
	err = cfg.RequireLive()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN")

	cfg.Token = "secret"
	assert.NoError(t, cfg.RequireLive())
}
