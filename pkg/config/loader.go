// Package config loads typed configuration from the environment, with
// optional dotenv files for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Validator is implemented by configs with constraints env tags cannot
// express.
type Validator interface {
	Validate() error
}

// Load exports the variables of the dotenv files that exist, parses the
// environment into a new T using its `env` tags and runs T's Validate
// method when it has one. Variables already set win over file values.
func Load[T any](envFiles ...string) (*T, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}
	cfg, err := env.ParseAs[T]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if v, ok := any(&cfg).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return &cfg, nil
}

func loadEnvFiles(paths []string) error {
	for _, p := range paths {
		err := godotenv.Load(p)
		switch {
		case err == nil, errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}
