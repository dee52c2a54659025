package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadConfigFile loads configuration from a YAML file on top of the defaults
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.ConfigFile = path

	return cfg, nil
}

// ConfigLocations returns the standard config file locations in search order
func ConfigLocations() []string {
	locations := []string{
		"./ytaudio.yaml",
		"./ytaudio.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".ytaudio", "config.yaml"),
			filepath.Join(home, ".ytaudio", "config.yml"),
		)
	}
	return append(locations,
		"/etc/ytaudio/config.yaml",
		"/etc/ytaudio/config.yml",
	)
}

// FindConfigFile searches for config file in standard locations
// Returns empty string if not found (non-fatal)
func FindConfigFile() string {
	for _, path := range ConfigLocations() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// SaveConfigFile saves configuration to a YAML file. The source (URL and
// input file) belongs to a single run and is not written.
func SaveConfigFile(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	saved := cfg.Copy()
	saved.URL = ""
	saved.Input = ""

	data, err := yaml.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
