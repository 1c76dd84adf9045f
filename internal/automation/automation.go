package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/rickersim/internal/config"
	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/experiment"
	"github.com/san-kum/rickersim/internal/logging"
	"github.com/san-kum/rickersim/internal/metrics"
	"github.com/san-kum/rickersim/internal/sim"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyScenario = errors.New("automation: scenario has no steps")
	ErrUnknownPreset = errors.New("automation: unknown preset")
	ErrInvalidTrials = errors.New("automation: trials must be at least 1")
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and overrides the
// fields that are set. Grid runs the sweep cross product instead of the
// single parameter set.
type ScenarioStep struct {
	Name      string   `yaml:"name"`
	Preset    string   `yaml:"preset"`
	R         *float64 `yaml:"r"`
	K         *float64 `yaml:"k"`
	N0        *float64 `yaml:"n0"`
	Steps     *int     `yaml:"steps"`
	Generator string   `yaml:"generator"`
	Metrics   []string `yaml:"metrics"`
	Grid      bool     `yaml:"grid"`
	SaveAs    string   `yaml:"save_as"`
}

// Config resolves the step into a validated run config.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, s.Preset)
		}
	}

	if s.R != nil {
		cfg.R = *s.R
	}
	if s.K != nil {
		cfg.K = *s.K
	}
	if s.N0 != nil {
		cfg.N0 = *s.N0
	}
	if s.Steps != nil {
		cfg.Steps = *s.Steps
	}
	if s.Generator != "" {
		cfg.Generator = s.Generator
	}
	if len(s.Metrics) > 0 {
		cfg.Metrics = s.Metrics
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s ScenarioStep) label(i int) string {
	if s.Name != "" {
		return s.Name
	}
	if s.Preset != "" {
		return s.Preset
	}
	return fmt.Sprintf("step-%d", i+1)
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

type StepResult struct {
	Name   string
	SaveAs string
	Result *experiment.Result
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, runner *sim.Runner, logger *slog.Logger) ([]StepResult, error) {
	logger = logging.OrDiscard(logger)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.label(i)
		logger.Info("running scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", name)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		if len(cfg.Metrics) == 0 {
			cfg.Metrics = metrics.Names()
		}

		exp, err := experiment.New(cfg, registry, runner, logger)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) setup: %w", i+1, name, err)
		}

		var res *experiment.Result
		if step.Grid {
			res, err = exp.RunGrid(ctx)
		} else {
			res, err = exp.RunSingle(ctx)
		}
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}

		results = append(results, StepResult{Name: name, SaveAs: step.SaveAs, Result: res})
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial population of Params uniformly by
// up to ±Perturbation. A zero Seed draws one from the clock.
type MonteCarloConfig struct {
	Params       dynamo.ParamSet
	Perturbation float64
	Trials       int
	Seed         int64
}

type MonteCarloResult struct {
	Trial   int     `json:"trial"`
	N0      float64 `json:"n0"`
	Final   float64 `json:"final"`
	Bounded bool    `json:"bounded"`
}

// RunMonteCarlo generates every trial in one call to gen. A trial is bounded
// when all of its values stay finite and within the experiment.PeakBound of
// its own parameters.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, gen experiment.Generator) ([]MonteCarloResult, error) {
	if cfg.Trials < 1 {
		return nil, ErrInvalidTrials
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ps := make([]dynamo.ParamSet, cfg.Trials)
	for i := range ps {
		ps[i] = cfg.Params
		ps[i].N0 = cfg.Params.N0 + (rng.Float64()-0.5)*2*cfg.Perturbation
	}

	coll, err := gen.Generate(ctx, ps)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, coll.Len())
	for i, tr := range coll.Entries {
		b := metrics.NewBounded(experiment.PeakBound(tr.Params))
		for j, v := range tr.Values {
			b.Observe(j+1, v)
		}
		results[i] = MonteCarloResult{
			Trial:   i,
			N0:      tr.Params.N0,
			Final:   tr.Final(),
			Bounded: b.Value() == 1,
		}
	}

	return results, nil
}

// MonteCarloStats counts bounded trials and summarizes the final values.
// A wide spread of finals from nearby starts indicates sensitive dependence.
func MonteCarloStats(results []MonteCarloResult) (bounded, unbounded int, finals metrics.Summary) {
	values := make([]float64, len(results))
	for i, r := range results {
		if r.Bounded {
			bounded++
		} else {
			unbounded++
		}
		values[i] = r.Final
	}
	return bounded, unbounded, metrics.Summarize(values)
}
