// Package config reads the generator settings from the environment.
package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "ASYNCAPI_GEN_"

// Config holds the settings the CLI falls back to when a flag is not given.
type Config struct {
	Target      string `env:"TARGET" envDefault:"cpp"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`
	Concurrency int    `env:"CONCURRENCY" envDefault:"4"`
	WrapWidth   int    `env:"WRAP_WIDTH" envDefault:"77"`
	Summary     bool   `env:"SUMMARY" envDefault:"false"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix})
}

// LoadFrom reads the configuration from environ instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the numeric settings are usable.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("%sCONCURRENCY must be at least 1, got %d", EnvPrefix, c.Concurrency)
	}
	if c.WrapWidth < 20 {
		return fmt.Errorf("%sWRAP_WIDTH must be at least 20, got %d", EnvPrefix, c.WrapWidth)
	}
	return nil
}
