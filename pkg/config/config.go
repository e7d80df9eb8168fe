// Package config loads runtime settings from the environment, with sane
// defaults for everything except the HA connection itself.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/hassops/ha-guard/pkg/logger"
)

var configLog = logger.New("config")

// EnvPrefix namespaces every environment variable read here, e.g.
// HA_GUARD_BASE_URL and HA_GUARD_TOKEN.
const EnvPrefix = "HA_GUARD_"

// Config holds the settings for talking to a live Home Assistant
// instance. BaseURL and Token are only required for live validation;
// static validation never reads them.
type Config struct {
	BaseURL     string        `koanf:"base_url"`
	Token       string        `koanf:"token"`
	CacheTTL    time.Duration `koanf:"cache_ttl"`
	HTTPTimeout time.Duration `koanf:"http_timeout"`
}

// Default returns the built-in settings before the environment applies.
func Default() Config {
	return Config{
		CacheTTL:    5 * time.Minute,
		HTTPTimeout: 10 * time.Second,
	}
}

// Load builds the configuration from defaults overlaid with HA_GUARD_*
// environment variables.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return key, value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	configLog.Printf("Loaded config: base_url=%q cache_ttl=%s http_timeout=%s",
		cfg.BaseURL, cfg.CacheTTL, cfg.HTTPTimeout)
	return cfg, nil
}

// RequireLive validates that the settings needed for live validation are
// present.
func (c Config) RequireLive() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%sBASE_URL is required for live validation", EnvPrefix)
	}
	if c.Token == "" {
		return fmt.Errorf("%sTOKEN is required for live validation", EnvPrefix)
	}
	return nil
}
