// Package config loads application configuration from an optional YAML file
// and TACTICS_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EngineConfig holds combat engine settings
type EngineConfig struct {
	// Seed fixes the dice sequence. Zero seeds from the clock.
	Seed int64 `mapstructure:"seed"`
	// LogRolls logs every die roll at debug level.
	LogRolls bool `mapstructure:"log_rolls"`
}

// LoggingConfig holds structured logging settings
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is "json" or "console".
	Format string `mapstructure:"format"`
}

// RedisConfig holds encounter persistence settings
type RedisConfig struct {
	// URL is a redis:// connection URL. Empty keeps encounters in memory.
	URL string `mapstructure:"url"`
	// TTL is how long an encounter snapshot lives after its last write.
	TTL time.Duration `mapstructure:"ttl"`
}

// DND5EConfig holds D&D 5e API configuration
type DND5EConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CatalogConfig points at content files. Empty paths use the built-in content.
type CatalogConfig struct {
	WeaponsPath  string `mapstructure:"weapons_path"`
	BestiaryPath string `mapstructure:"bestiary_path"`
}

// Config holds all configuration for the application
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
	Redis   RedisConfig   `mapstructure:"redis"`
	DND5E   DND5EConfig   `mapstructure:"dnd5e"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// Validate checks every section and reports all violations at once
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Redis.TTL < 0 {
		errs = append(errs, "redis.ttl must not be negative")
	}
	if c.Redis.URL != "" && !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		errs = append(errs, fmt.Sprintf("redis.url must use the redis:// or rediss:// scheme, got %q", c.Redis.URL))
	}
	if c.DND5E.Enabled {
		if c.DND5E.BaseURL == "" {
			errs = append(errs, "dnd5e.base_url must not be empty when dnd5e.enabled is set")
		}
		if c.DND5E.Timeout <= 0 {
			errs = append(errs, "dnd5e.timeout must be positive")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads the YAML file at path when path is non-empty, applies
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("TACTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// REDIS_URL is the conventional name on hosted platforms
	if err := v.BindEnv("redis.url", "TACTICS_REDIS_URL", "REDIS_URL"); err != nil {
		return nil, fmt.Errorf("binding redis.url: %w", err)
	}

	setDefaults(v)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already configured Viper instance
func LoadFromViper(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errors.New("viper instance is required")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.log_rolls", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", "24h")

	v.SetDefault("dnd5e.enabled", false)
	v.SetDefault("dnd5e.base_url", "https://www.dnd5eapi.co/api")
	v.SetDefault("dnd5e.timeout", "30s")

	v.SetDefault("catalog.weapons_path", "")
	v.SetDefault("catalog.bestiary_path", "")
}
