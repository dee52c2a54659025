package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by MergeFromEnv.
const EnvPrefix = "YTAUDIO_"

// DefaultEnvFile is loaded when present and no -env-file is given.
const DefaultEnvFile = ".env"

// LoadEnvFile exports the variables in path into the process environment.
// Variables that are already set keep their value. A missing default file is
// not an error; a missing explicit file is.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// MergeFromEnv overrides config values with YTAUDIO_* environment variables.
// Unset variables leave the current value in place.
func (c *Config) MergeFromEnv() error {
	return c.mergeFromEnv(env.Options{Prefix: EnvPrefix})
}

func (c *Config) mergeFromEnv(opts env.Options) error {
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}
