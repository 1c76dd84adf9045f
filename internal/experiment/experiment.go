package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/rickersim/internal/config"
	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/logging"
	"github.com/san-kum/rickersim/internal/metrics"
	"github.com/san-kum/rickersim/internal/sim"
)

// Experiment runs the parameter sets described by a config with the
// configured generator and scores every trajectory.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	gen      Generator
	logger   *slog.Logger
}

type Result struct {
	Generator  string
	Collection *dynamo.Collection
	Metrics    []map[string]float64
	Summaries  []metrics.Summary
}

func New(cfg *config.Config, registry *Registry, runner *sim.Runner, logger *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gen, err := registry.GetGenerator(cfg.Generator, runner)
	if err != nil {
		return nil, err
	}
	return &Experiment{
		cfg:      cfg,
		registry: registry,
		gen:      gen,
		logger:   logging.OrDiscard(logger),
	}, nil
}

// Run generates and scores one trajectory per parameter set.
func (e *Experiment) Run(ctx context.Context, ps []dynamo.ParamSet) (*Result, error) {
	metricsFor := func(p dynamo.ParamSet) ([]dynamo.Metric, error) {
		return e.registry.Metrics(e.cfg.Metrics, p)
	}

	var (
		coll   *dynamo.Collection
		values []map[string]float64
		err    error
	)
	if mg, ok := e.gen.(MeteredGenerator); ok {
		coll, values, err = mg.GenerateMetered(ctx, ps, metricsFor)
		if err != nil {
			return nil, fmt.Errorf("generate: %w", err)
		}
	} else {
		coll, err = e.gen.Generate(ctx, ps)
		if err != nil {
			return nil, fmt.Errorf("generate: %w", err)
		}
		values = make([]map[string]float64, coll.Len())
		for i, tr := range coll.Entries {
			ms, err := metricsFor(tr.Params)
			if err != nil {
				return nil, err
			}
			values[i] = Evaluate(tr, ms)
		}
	}

	res := &Result{
		Generator:  e.cfg.Generator,
		Collection: coll,
		Metrics:    values,
		Summaries:  make([]metrics.Summary, coll.Len()),
	}
	for i, tr := range coll.Entries {
		res.Summaries[i] = metrics.Summarize(tr.Values)
	}

	e.logger.Info("experiment complete",
		"generator", e.cfg.Generator,
		"sets", coll.Len(),
	)
	return res, nil
}

// RunSingle runs the single parameter set of the config.
func (e *Experiment) RunSingle(ctx context.Context) (*Result, error) {
	return e.Run(ctx, []dynamo.ParamSet{e.cfg.ParamSet()})
}

// RunGrid runs the cross product of the sweep settings.
func (e *Experiment) RunGrid(ctx context.Context) (*Result, error) {
	ps, err := e.cfg.Grid().Enumerate()
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, ps)
}

// Evaluate feeds a finished trajectory through fresh metrics. Generators
// without per-step hooks are scored this way.
func Evaluate(tr dynamo.Trajectory, ms []dynamo.Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i, n := range tr.Values {
			m.Observe(i+1, n)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
