package config

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/san-kum/rickersim/internal/logging"
	"github.com/san-kum/rickersim/internal/observability"
)

// EnvConfig is process configuration read from RICKERSIM_* variables.
type EnvConfig struct {
	Log     logging.Config              `env:""`
	Tracing observability.TracingConfig `env:""`
}

func DefaultEnvConfig() *EnvConfig {
	return &EnvConfig{
		Log: logging.DefaultConfig(),
		Tracing: observability.TracingConfig{
			ServiceName: "rickersim",
			Exporter:    "stdout",
			SampleRatio: 1,
		},
	}
}

// LoadEnv decodes and validates the environment. An environment without any
// RICKERSIM_* variable yields the defaults.
func LoadEnv() (*EnvConfig, error) {
	cfg := DefaultEnvConfig()

	if err := envdecode.Decode(cfg); err != nil {
		if !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil, fmt.Errorf("decode env: %w", err)
		}
		cfg = DefaultEnvConfig()
	}

	if err := ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("validate env: %w", err)
	}

	return cfg, nil
}
