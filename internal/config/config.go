// Package config loads Genesis settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration.
type Config struct {
	// DB is the SQLite file holding session state.
	DB string `env:"GENESIS_DB" envDefault:"genesis.db"`
	// LogMode selects the logger: dev, prod or quiet.
	LogMode string `env:"GENESIS_LOG_MODE" envDefault:"dev"`
	// LogCap bounds the activity log.
	LogCap int `env:"GENESIS_LOG_CAP" envDefault:"50"`
	// SimulatedLatency delays every resolution.
	SimulatedLatency time.Duration `env:"GENESIS_SIMULATED_LATENCY" envDefault:"0s"`
	// Recipes lists extra CUE recipe files loaded after the built-in table.
	Recipes []string `env:"GENESIS_RECIPES" envSeparator:","`

	Generative Generative `envPrefix:"GENESIS_GENERATIVE_"`
}

// Generative configures the optional generative capability.
type Generative struct {
	Enabled    bool          `env:"ENABLED" envDefault:"false"`
	BaseURL    string        `env:"BASE_URL" envDefault:"https://api.openai.com"`
	APIKey     string        `env:"API_KEY"`
	Model      string        `env:"MODEL" envDefault:"gpt-4o-mini"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"20s"`
	MaxRetries int           `env:"MAX_RETRIES" envDefault:"2"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.LogCap <= 0 {
		errs = append(errs, fmt.Errorf("GENESIS_LOG_CAP must be positive, got %d", c.LogCap))
	}
	if c.SimulatedLatency < 0 {
		errs = append(errs, fmt.Errorf("GENESIS_SIMULATED_LATENCY must not be negative, got %s", c.SimulatedLatency))
	}
	if c.Generative.Enabled {
		if c.Generative.APIKey == "" {
			errs = append(errs, errors.New("GENESIS_GENERATIVE_API_KEY is required when generation is enabled"))
		}
		if c.Generative.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("GENESIS_GENERATIVE_TIMEOUT must be positive, got %s", c.Generative.Timeout))
		}
		if c.Generative.MaxRetries < 0 {
			errs = append(errs, fmt.Errorf("GENESIS_GENERATIVE_MAX_RETRIES must not be negative, got %d", c.Generative.MaxRetries))
		}
	}
	return errors.Join(errs...)
}
