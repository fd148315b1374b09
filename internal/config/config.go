// Package config loads TeamTime settings from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// DBPath is the SQLite database file holding the events and groups keys.
	DBPath string `yaml:"db_path"`

	// Listen is the HTTP listen address used by `teamtime serve`.
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Timezone is the IANA zone used to turn minutes-of-day into instants
	// (ICS export/import).
	Timezone string `yaml:"timezone"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DBPath:   "./data/teamtime.db",
		Listen:   "127.0.0.1:8080",
		LogLevel: "info",
		Timezone: "Local",
	}
}

// Normalize fills empty fields with defaults.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
}

// Load reads the YAML file at path, then applies environment overrides.
// A missing file is not an error: defaults are used. An empty path skips
// the file entirely.
//
// Environment variables:
//
//	TEAMTIME_DB_PATH, TEAMTIME_LISTEN, TEAMTIME_TIMEZONE, LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.DBPath = getEnv("TEAMTIME_DB_PATH", cfg.DBPath)
	cfg.Listen = getEnv("TEAMTIME_LISTEN", cfg.Listen)
	cfg.Timezone = getEnv("TEAMTIME_TIMEZONE", cfg.Timezone)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Normalize()

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	cfg.Normalize()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
