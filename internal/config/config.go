// Package config provides configuration management for switchmap.
//
// The config file describes the fleet and the server; the database holds
// what discovery found. Device credentials stay out of the file: the
// password comes from the environment or a flag.
//
// Config file locations (priority order):
//  1. $SWITCHMAP_CONFIG
//  2. ./switchmap.yaml
//  3. ~/.config/switchmap/config.yaml
//  4. /etc/switchmap/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPassword is the environment variable holding the device password
const EnvPassword = "SWITCHMAP_PASSWORD"

// Load finds and loads the config file, or returns defaults if none
// found, then applies environment overrides
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, "", nil
	}

	cfg, path, err := LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	cfg.applyEnv()
	return cfg, path, nil
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{
		Version:  1,
		Listen:   ":8080",
		Database: DatabaseConfig{Path: "./switchmap.db"},
		Log:      LogConfig{Level: "info", Format: "console"},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./switchmap.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Discovery.Port == 0 {
		c.Discovery.Port = 22
	}
	if c.Discovery.Concurrency == 0 {
		c.Discovery.Concurrency = 10
	}
	if c.Discovery.ConnectTimeout == 0 {
		c.Discovery.ConnectTimeout = Duration(10 * time.Second)
	}
	if c.Discovery.CommandTimeout == 0 {
		c.Discovery.CommandTimeout = Duration(30 * time.Second)
	}
	if c.Discovery.KeepRuns == 0 {
		c.Discovery.KeepRuns = 50
	}
	if c.Scan.Port == 0 {
		c.Scan.Port = 22
	}
	if c.Scan.Timeout == 0 {
		c.Scan.Timeout = Duration(1 * time.Second)
	}
}

// applyEnv pulls secrets from the environment
func (c *Config) applyEnv() {
	if pw := os.Getenv(EnvPassword); pw != "" {
		c.Discovery.Password = pw
	}
}

// PollingEnabled reports whether periodic discovery runs are configured
func (c *Config) PollingEnabled() bool {
	return c.Discovery.Interval > 0
}
