package experiment

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/metrics"
	"github.com/san-kum/rickersim/internal/sim"
)

// Generator turns parameter sets into a collection with entry i belonging
// to set i.
type Generator interface {
	Generate(ctx context.Context, ps []dynamo.ParamSet) (*dynamo.Collection, error)
}

// MeteredGenerator observes metrics while it generates instead of after.
type MeteredGenerator interface {
	Generator
	GenerateMetered(ctx context.Context, ps []dynamo.ParamSet, metricsFor sim.MetricFactory) (*dynamo.Collection, []map[string]float64, error)
}

type scalarGenerator struct {
	run *sim.Runner
}

func (g scalarGenerator) Generate(ctx context.Context, ps []dynamo.ParamSet) (*dynamo.Collection, error) {
	return g.run.Scalar(ctx, ps)
}

func (g scalarGenerator) GenerateMetered(ctx context.Context, ps []dynamo.ParamSet, metricsFor sim.MetricFactory) (*dynamo.Collection, []map[string]float64, error) {
	return g.run.ScalarMetered(ctx, ps, metricsFor)
}

type GeneratorFunc func(ctx context.Context, ps []dynamo.ParamSet) (*dynamo.Collection, error)

func (f GeneratorFunc) Generate(ctx context.Context, ps []dynamo.ParamSet) (*dynamo.Collection, error) {
	return f(ctx, ps)
}

type Registry struct {
	generators map[string]func(*sim.Runner) Generator
	metrics    map[string]func(dynamo.ParamSet) dynamo.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		generators: make(map[string]func(*sim.Runner) Generator),
		metrics:    make(map[string]func(dynamo.ParamSet) dynamo.Metric),
	}

	r.generators["scalar"] = func(run *sim.Runner) Generator { return scalarGenerator{run: run} }
	r.generators["vectorized"] = func(run *sim.Runner) Generator { return GeneratorFunc(run.Vectorized) }

	r.metrics["mean"] = func(dynamo.ParamSet) dynamo.Metric { return metrics.NewMean() }
	r.metrics["amplitude"] = func(p dynamo.ParamSet) dynamo.Metric { return metrics.NewAmplitude(p.Steps / 2) }
	r.metrics["bounded"] = func(p dynamo.ParamSet) dynamo.Metric { return metrics.NewBounded(PeakBound(p)) }

	return r
}

// PeakBound is the largest value a trajectory of p can reach: the map's
// maximum k * exp(r-1) / r for r > 1 (k otherwise), or N0 when the start lies
// above it. Every later value stays below the larger of the two.
func PeakBound(p dynamo.ParamSet) float64 {
	peak := p.K
	if p.R > 1 {
		peak = p.K * math.Exp(p.R-1) / p.R
	}
	return math.Max(peak, p.N0)
}

func (r *Registry) GetGenerator(name string, runner *sim.Runner) (Generator, error) {
	fn, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("unknown generator: %s", name)
	}
	return fn(runner), nil
}

func (r *Registry) ListGenerators() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Metrics builds fresh metric instances for one parameter set.
func (r *Registry) Metrics(names []string, p dynamo.ParamSet) ([]dynamo.Metric, error) {
	out := make([]dynamo.Metric, 0, len(names))
	for _, name := range names {
		fn, ok := r.metrics[name]
		if !ok {
			return nil, fmt.Errorf("unknown metric: %s", name)
		}
		out = append(out, fn(p))
	}
	return out, nil
}
