package sim

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/logging"
	"github.com/san-kum/rickersim/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/san-kum/rickersim/internal/sim"

// Runner produces trajectory collections for many parameter sets, either one
// scalar run per set on a worker pool or as rectangular vectorized batches.
type Runner struct {
	workers   int
	logger    *slog.Logger
	collector *observability.Collector
	tracer    trace.Tracer
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = logging.OrDiscard(l) }
}

func WithCollector(c *observability.Collector) Option {
	return func(r *Runner) { r.collector = c }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		workers: runtime.GOMAXPROCS(0),
		logger:  logging.Discard(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Workers() int { return r.workers }

// MetricFactory builds fresh metrics for one parameter set.
type MetricFactory func(p dynamo.ParamSet) ([]dynamo.Metric, error)

// Scalar runs the scalar recurrence for every parameter set concurrently.
// Sets may have different lengths. Entry i of the collection belongs to ps[i].
func (r *Runner) Scalar(ctx context.Context, ps []dynamo.ParamSet) (*dynamo.Collection, error) {
	coll, _, err := r.ScalarMetered(ctx, ps, nil)
	return coll, err
}

// ScalarMetered is Scalar with a Simulator per set observing the metrics
// built by metricsFor. Entry i of the returned values belongs to ps[i]; it is
// empty when metricsFor is nil.
func (r *Runner) ScalarMetered(ctx context.Context, ps []dynamo.ParamSet, metricsFor MetricFactory) (*dynamo.Collection, []map[string]float64, error) {
	ctx, span := r.tracer.Start(ctx, "sim.Scalar", trace.WithAttributes(
		attribute.Int("sets", len(ps)),
		attribute.Int("workers", r.workers),
	))
	defer span.End()

	start := time.Now()
	coll := dynamo.NewCollection(len(ps))
	values := make([]map[string]float64, len(ps))
	errs := make([]error, len(ps))

	pool := pond.NewPool(r.workers)
	for i, p := range ps {
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}

			var ms []dynamo.Metric
			if metricsFor != nil {
				var err error
				if ms, err = metricsFor(p); err != nil {
					errs[i] = err
					return
				}
			}

			res, err := New(ms...).Run(ctx, p)
			if err != nil {
				errs[i] = fmt.Errorf("parameter set %d (%s): %w", i, p, err)
				return
			}
			coll.Entries[i] = res.Trajectory
			values[i] = res.Metrics
			r.collector.ObserveTrajectory(res.Trajectory.Len(), res.Trajectory.IsFinite())
		})
	}
	pool.StopAndWait()

	for _, err := range errs {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, nil, err
		}
	}

	elapsed := time.Since(start)
	r.collector.ObserveScalarRun(elapsed)
	r.logger.Debug("scalar run complete", "sets", len(ps), "elapsed", elapsed)

	return coll, values, nil
}

// Vectorized runs one batch per distinct length and scatters rows back to
// their original positions.
func (r *Runner) Vectorized(ctx context.Context, ps []dynamo.ParamSet) (*dynamo.Collection, error) {
	ctx, span := r.tracer.Start(ctx, "sim.Vectorized", trace.WithAttributes(
		attribute.Int("sets", len(ps)),
	))
	defer span.End()

	if len(ps) == 0 {
		return dynamo.NewCollection(0), nil
	}

	start := time.Now()
	coll := dynamo.NewCollection(len(ps))
	groups := GroupBySteps(ps)

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		group := make([]dynamo.ParamSet, len(g.Indices))
		for j, idx := range g.Indices {
			group[j] = ps[idx]
		}

		b, err := r.runBatch(ctx, group)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		for j, idx := range g.Indices {
			tr := b.Trajectory(j)
			coll.Entries[idx] = tr
			r.collector.ObserveTrajectory(tr.Len(), tr.IsFinite())
		}
	}

	r.logger.Debug("vectorized run complete",
		"sets", len(ps),
		"groups", len(groups),
		"elapsed", time.Since(start),
	)

	return coll, nil
}

// Batch runs a single rectangular batch and reports it to the collector.
func (r *Runner) Batch(ctx context.Context, in BatchInput) (*Batch, error) {
	_, span := r.tracer.Start(ctx, "sim.Batch", trace.WithAttributes(
		attribute.Int("size", in.Size()),
		attribute.Int("steps", in.Steps),
	))
	defer span.End()

	start := time.Now()
	b, err := RunBatch(in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	r.collector.ObserveBatchRun(time.Since(start))
	return b, nil
}

func (r *Runner) runBatch(ctx context.Context, ps []dynamo.ParamSet) (*Batch, error) {
	in, err := BatchFromParams(ps)
	if err != nil {
		return nil, err
	}
	return r.Batch(ctx, in)
}
