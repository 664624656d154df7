// Package config loads the jacques TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all jacques configuration.
type Config struct {
	Calibration CalibrationConfig `toml:"calibration"`
	Skills      SkillsConfig      `toml:"skills"`
	Windows     WindowsConfig     `toml:"windows"`
}

// CalibrationConfig selects the calibration store backend.
type CalibrationConfig struct {
	// Backend is "file" (JSON, default) or "sqlite".
	Backend string `toml:"backend"`
	// Path overrides the store file location.
	Path string `toml:"path,omitempty"`
}

// SkillsConfig overrides the skill descriptor scan roots.
type SkillsConfig struct {
	Roots []string `toml:"roots,omitempty"`
}

// WindowsConfig overrides the model window table.
type WindowsConfig struct {
	Default   int            `toml:"default,omitempty"`
	Overrides map[string]int `toml:"overrides,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Calibration: CalibrationConfig{Backend: "file"},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "jacques")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "jacques")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config file at an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}
