// Package config loads and saves the shared usagetop configuration.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/usagetop/usagetop/internal/logging"
)

// DefaultDays is the report window used when no range is given.
const DefaultDays = 30

// Config holds settings shared by the CLI and the server.
type Config struct {
	// BaseURL overrides the usage API endpoint. Empty means the public API.
	BaseURL string `yaml:"base_url,omitempty"`

	// APIKey authenticates against the usage API.
	APIKey string `yaml:"api_key"`

	// Days is the default report window in days.
	Days int `yaml:"days,omitempty"`

	// Logging configures the zap logger.
	Logging logging.Config `yaml:"logging,omitempty"`
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".usagetop.yaml"), nil
}

// Load reads the configuration from disk. A missing file yields
// defaults rather than an error.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg := &Config{Days: DefaultDays, Logging: logging.DefaultConfig()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Days <= 0 {
		cfg.Days = DefaultDays
	}

	return cfg, nil
}

// Save writes the configuration to disk. The file stays private since
// it carries the API key.
func Save(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
