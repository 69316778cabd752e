// Package config loads the dailydash configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Config is the top-level dailydash configuration, corresponding to
// .dailydash.yml.
type Config struct {
	// Port the HTTP server listens on.
	Port int `yaml:"port" koanf:"port"`
	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path" koanf:"db_path"`
	// APIBaseURL is where the client engine reaches the JSON API.
	// Defaults to the local server.
	APIBaseURL string `yaml:"api_base_url" koanf:"api_base_url"`
	// AllowAllCORS opens CORS to any origin (dev mode).
	AllowAllCORS bool `yaml:"allow_all_cors" koanf:"allow_all_cors"`
	// FixturePath optionally points at a YAML article fixture used by
	// the seed command.
	FixturePath string `yaml:"fixture_path" koanf:"fixture_path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:   8080,
		DBPath: "dailydash.db",
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DAILYDASH_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("DAILYDASH_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DAILYDASH_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	return nil
}

// APIBase returns the configured API base URL, defaulting to the local
// server on the configured port.
func (c *Config) APIBase() string {
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	return fmt.Sprintf("http://127.0.0.1:%d", c.Port)
}
