package gdecs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds file-loadable integration settings.
type Config struct {
	// TransformSync selects the transform synchronization mode:
	// "disabled", "one-way" or "two-way". Empty means one-way.
	TransformSync string `yaml:"transform_sync"`

	// Workers is the scheduler worker pool size. Zero uses GOMAXPROCS.
	Workers int `yaml:"workers"`

	// LogLevel is the minimum log level: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		TransformSync: "one-way",
		LogLevel:      "info",
	}
}

// LoadConfig reads a YAML configuration file. Missing keys keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gdecs: reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("gdecs: parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := ParseSyncMode(c.TransformSync); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("gdecs: workers must not be negative, got %d", c.Workers)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("gdecs: unknown log level %q", c.LogLevel)
	}
	return nil
}

// SyncMode returns the parsed transform synchronization mode.
func (c *Config) SyncMode() (SyncMode, error) {
	return ParseSyncMode(c.TransformSync)
}
