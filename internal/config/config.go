// Package config loads CLI configuration from an optional YAML file,
// layering file values over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Timeouts bounds the external processes the CLI spawns.
type Timeouts struct {
	Metadata time.Duration `yaml:"metadata"`
	Scan     time.Duration `yaml:"scan"`
	Pip      time.Duration `yaml:"pip"`
	Editable time.Duration `yaml:"editable"`
	Download time.Duration `yaml:"download"`
}

// Config is the CLI configuration.
type Config struct {
	LogLevel    string   `yaml:"log_level"`
	ScannersDir string   `yaml:"scanners_dir"`
	PythonBin   string   `yaml:"python_bin"`
	Timeouts    Timeouts `yaml:"timeouts"`
}

// Default returns the built-in configuration. ScannersDir is left
// empty so the install layout can fall back to its own default under
// the user's home directory.
func Default() Config {
	return Config{
		LogLevel:  "info",
		PythonBin: "python3",
		Timeouts: Timeouts{
			Metadata: 60 * time.Second,
			Scan:     10 * time.Minute,
			Pip:      10 * time.Minute,
			Editable: 5 * time.Minute,
			Download: 5 * time.Minute,
		},
	}
}

// DefaultPath returns the standard config file location,
// ~/.codescope/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(home, ".codescope", "config.yaml"), nil
}

// Load reads the config file at path over the defaults. A missing file
// is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "off":
		return nil
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
}
