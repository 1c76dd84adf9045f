package config

import (
	"fmt"
	"os"

	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/grid"
	"gopkg.in/yaml.v3"
)

const (
	DefaultR       = 2.0
	DefaultK       = 100.0
	DefaultN0      = 50.0
	DefaultSteps   = 200
	DefaultRMin    = 1.5
	DefaultRMax    = 3.5
	DefaultRSteps  = 200
	DefaultRecord  = 40
	DefaultLyapN0  = 50.0
	DefaultLyapLen = 1000
)

// Config describes one run or sweep.
type Config struct {
	R         float64     `yaml:"r"`
	K         float64     `yaml:"k"`
	N0        float64     `yaml:"n0"`
	Steps     int         `yaml:"steps" validate:"gte=1"`
	Generator string      `yaml:"generator" validate:"oneof=scalar vectorized"`
	Workers   int         `yaml:"workers" validate:"gte=0"`
	Metrics   []string    `yaml:"metrics,omitempty" validate:"dive,oneof=mean amplitude bounded"`
	Sweep     SweepConfig `yaml:"sweep"`
}

// SweepConfig ranges growth rates for grids, bifurcation diagrams and
// Lyapunov sweeps. Empty K or N0 fall back to the run values.
type SweepConfig struct {
	RMin   float64   `yaml:"r_min"`
	RMax   float64   `yaml:"r_max" validate:"gtefield=RMin"`
	RSteps int       `yaml:"r_steps" validate:"gte=1"`
	K      []float64 `yaml:"k,omitempty"`
	N0     []float64 `yaml:"n0,omitempty"`
	Record int       `yaml:"record" validate:"gte=1"`
}

func DefaultConfig() *Config {
	return &Config{
		R:         DefaultR,
		K:         DefaultK,
		N0:        DefaultN0,
		Steps:     DefaultSteps,
		Generator: "scalar",
		Sweep: SweepConfig{
			RMin:   DefaultRMin,
			RMax:   DefaultRMax,
			RSteps: DefaultRSteps,
			Record: DefaultRecord,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	return ValidateStruct(c)
}

// ValidateRecord checks that the bifurcation window fits in the run length.
// Only diagram commands need it.
func (c *Config) ValidateRecord() error {
	if c.Sweep.Record > c.Steps {
		return ValidationErrors{Errors: []string{
			fmt.Sprintf("sweep.record %d exceeds steps %d", c.Sweep.Record, c.Steps),
		}}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Metrics = append([]string(nil), c.Metrics...)
	out.Sweep.K = append([]float64(nil), c.Sweep.K...)
	out.Sweep.N0 = append([]float64(nil), c.Sweep.N0...)
	return &out
}

func (c *Config) ParamSet() dynamo.ParamSet {
	return dynamo.ParamSet{R: c.R, K: c.K, N0: c.N0, Steps: c.Steps}
}

// Rates returns the swept growth rates.
func (c *Config) Rates() []float64 {
	return grid.Linspace(c.Sweep.RMin, c.Sweep.RMax, c.Sweep.RSteps)
}

// Grid crosses the swept rates with the sweep capacities and initial
// populations.
func (c *Config) Grid() grid.Grid {
	g := grid.Grid{
		R:     c.Rates(),
		K:     c.Sweep.K,
		N0:    c.Sweep.N0,
		Steps: c.Steps,
	}
	if len(g.K) == 0 {
		g.K = []float64{c.K}
	}
	if len(g.N0) == 0 {
		g.N0 = []float64{c.N0}
	}
	return g
}
