// Package config loads application configuration from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigFile = "INSTALLTRACK_CONFIG"
	EnvListenAddr = "INSTALLTRACK_LISTEN_ADDR"
	EnvDBPath     = "INSTALLTRACK_DB_PATH"
	EnvLocale     = "INSTALLTRACK_LOCALE"
	EnvLogLevel   = "INSTALLTRACK_LOG_LEVEL"
)

// Config holds the application configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
	Locale     string `yaml:"locale"`    // Locale of month labels, e.g. fr_FR.
	LogLevel   string `yaml:"log_level"` // debug, info, warn or error.
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ListenAddr: "127.0.0.1:8080",
		DBPath:     "installtrack.db",
		Locale:     "fr_FR",
		LogLevel:   "info",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// INSTALLTRACK_CONFIG (if any), then INSTALLTRACK_* environment variables.
// A configured file that does not exist is an error.
func Load() (*Config, error) {
	cfg := Default()

	if path, ok := os.LookupEnv(EnvConfigFile); ok && path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvListenAddr); ok {
		c.ListenAddr = v
	}
	if v, ok := os.LookupEnv(EnvDBPath); ok {
		c.DBPath = v
	}
	if v, ok := os.LookupEnv(EnvLocale); ok {
		c.Locale = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = strings.ToLower(v)
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.DBPath == "" {
		result = multierror.Append(result, errors.New("db_path must not be empty"))
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		result = multierror.Append(result, fmt.Errorf("listen_addr %q: %w", c.ListenAddr, err))
	}
	if c.Locale == "" {
		result = multierror.Append(result, errors.New("locale must not be empty"))
	}
	if _, err := c.SlogLevel(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

// SlogLevel converts LogLevel to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
