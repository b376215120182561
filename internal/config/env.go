package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// loadDotEnv exports variables from path into the process environment.
// Variables that are already set win, and a missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// loadFromEnv overrides configuration with environment variables named by the env tags
func loadFromEnv(config *Config) error {
	return env.Parse(config)
}
