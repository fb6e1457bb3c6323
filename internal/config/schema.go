package config

import (
	"fmt"

	"github.com/ifaizanrathore/workora-eta-engine/internal/core"
)

// Config represents the full engine configuration
type Config struct {
	Version string `yaml:"version" mapstructure:"version"`

	// HTTP server settings
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Storage backend settings
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Accountability rules
	Accountability AccountabilityConfig `yaml:"accountability" mapstructure:"accountability"`
}

// ServerConfig configures the HTTP API server
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// StorageConfig selects and configures the repository backend
type StorageConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"` // sqlite, postgres, memory
	Path        string `yaml:"path" mapstructure:"path"`
	PostgresURL string `yaml:"postgres_url" mapstructure:"postgres_url"`
}

// AccountabilityConfig holds the user-adjustable accountability settings
type AccountabilityConfig struct {
	MaxStrikes int `yaml:"max_strikes" mapstructure:"max_strikes"`
	GraceHours int `yaml:"grace_hours" mapstructure:"grace_hours"`
}

// Validate checks backend choice and setting ranges.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "postgres" && c.Storage.PostgresURL == "" {
		return fmt.Errorf("storage.postgres_url required for the postgres backend")
	}
	if n := c.Accountability.MaxStrikes; n < core.MinMaxStrikes || n > core.MaxMaxStrikes {
		return fmt.Errorf("accountability.max_strikes must be between %d and %d, got %d",
			core.MinMaxStrikes, core.MaxMaxStrikes, n)
	}
	if n := c.Accountability.GraceHours; n < core.MinGraceHours || n > core.MaxGraceHours {
		return fmt.Errorf("accountability.grace_hours must be between %d and %d, got %d",
			core.MinGraceHours, core.MaxGraceHours, n)
	}
	return nil
}

// EngineConfig converts to core.Config
func (c *Config) EngineConfig() core.Config {
	return core.Config{
		MaxStrikes: c.Accountability.MaxStrikes,
		GraceHours: c.Accountability.GraceHours,
	}
}
