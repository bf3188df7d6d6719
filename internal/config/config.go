// Package config provides configuration management for trackline.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the default config file name
	ConfigFileName = "config.yaml"
	// TracklineDir is the trackline configuration directory
	TracklineDir = ".trackline"
)

// Environment tags. Production suppresses internal error detail in responses.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds the embedded database settings.
type DatabaseConfig struct {
	// Path is the SQLite file location. The parent directory is created on
	// open if missing.
	Path string `yaml:"path"`
}

// RateLimitConfig throttles request volume per caller at the HTTP boundary.
// RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Config represents the trackline configuration.
type Config struct {
	// Version is the config file version
	Version int `yaml:"version"`

	// Environment tag (development, production)
	Environment string `yaml:"environment"`

	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// IsDevelopment reports whether the environment tag is development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version:     1,
		Environment: EnvDevelopment,
		Server: ServerConfig{
			Host: "",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(TracklineDir, "trackline.db"),
		},
		RateLimit: RateLimitConfig{
			RPS:   50,
			Burst: 100,
		},
	}
}

// Load loads the config from the default location.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(TracklineDir, ConfigFileName))
}

// LoadFrom loads the config from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default() // Start with defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Save saves the config to the default location.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(TracklineDir, ConfigFileName))
}

// SaveTo saves the config to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Init initializes the trackline directory structure.
func Init(force bool) error {
	// Check if already initialized
	if !force {
		if _, err := os.Stat(TracklineDir); err == nil {
			return fmt.Errorf("trackline already initialized (use --force to overwrite)")
		}
	}

	if err := os.MkdirAll(TracklineDir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", TracklineDir, err)
	}

	// Write default config
	cfg := Default()
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// IsInitialized returns true if trackline is initialized in the current directory.
func IsInitialized() bool {
	_, err := os.Stat(TracklineDir)
	return err == nil
}
