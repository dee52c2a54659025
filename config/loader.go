package config

import (
	"fmt"
	"strings"
)

// LoadConfig loads configuration with priority:
// CLI flags > environment > config file > defaults.
//
// args are the command-line arguments without the program name.
func LoadConfig(args []string) (*Config, error) {
	// 1. Start with defaults
	cfg := DefaultConfig()

	// 2. Config file: -config, else the first standard location found
	configPath := lookupFlag(args, "config")
	if configPath == "" {
		configPath = FindConfigFile()
	}

	if configPath != "" {
		fileCfg, err := LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg = fileCfg
	}

	// 3. Environment, optionally seeded from a .env file
	if err := LoadEnvFile(lookupFlag(args, "env-file")); err != nil {
		return nil, err
	}
	if err := cfg.MergeFromEnv(); err != nil {
		return nil, err
	}

	// 4. CLI flags (highest priority)
	if err := cfg.MergeFromFlags(args); err != nil {
		return nil, err
	}

	if cfg.ShowVersion {
		return cfg, nil
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// lookupFlag finds the value of -name or --name in args before the flag set
// is parsed. Both "-name value" and "-name=value" are recognized.
func lookupFlag(args []string, name string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		trimmed := strings.TrimLeft(arg, "-")
		if trimmed == arg || len(arg)-len(trimmed) > 2 {
			continue
		}
		if trimmed == name && i+1 < len(args) {
			return args[i+1]
		}
		if value, ok := strings.CutPrefix(trimmed, name+"="); ok {
			return value
		}
	}
	return ""
}
