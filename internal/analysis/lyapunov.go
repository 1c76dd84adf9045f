package analysis

import (
	"context"
	"math"

	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/san-kum/rickersim/internal/analysis"

// LyapunovExponent estimates the Lyapunov exponent of the normalized Ricker
// map f(r, x) = x * exp(r * (1 - x)) as the mean of ln|f'(r, x)| along the
// orbit of n0. A positive value indicates chaos.
//
// Each step first advances the state and then evaluates the derivative at
// the new state, so the value at n0 itself never contributes:
//
//	for t in 1..steps: n = f(r, n); sum += ln|f'(r, n)|
//	return sum / steps
//
// The carrying capacity does not enter. A zero derivative contributes -Inf
// and the result is -Inf. steps < 1 returns NaN.
func LyapunovExponent(n0, r float64, steps int) float64 {
	return MapExponent(models.NewRicker(r, 1), n0, steps)
}

// MapExponent is the estimator behind LyapunovExponent for any
// one-dimensional map.
func MapExponent(m dynamo.Map, n0 float64, steps int) float64 {
	if steps < 1 {
		return math.NaN()
	}

	n := n0
	sum := 0.0
	for t := 0; t < steps; t++ {
		n = m.Next(n)
		sum += math.Log(math.Abs(m.Derivative(n)))
	}

	return sum / float64(steps)
}

// LyapunovSweep computes the exponent for every growth rate in rs. Entry i
// of the result belongs to rs[i] and does not depend on the worker count.
func LyapunovSweep(ctx context.Context, rs []float64, n0 float64, steps, workers int) ([]dynamo.Stability, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "analysis.LyapunovSweep", trace.WithAttributes(
		attribute.Int("rates", len(rs)),
		attribute.Int("steps", steps),
	))
	defer span.End()

	if steps < 1 {
		return nil, &dynamo.ShapeError{Field: "steps", Got: steps, Want: 1, Wrapped: dynamo.ErrInvalidSteps}
	}

	out := make([]dynamo.Stability, len(rs))
	dynamo.ParallelFor(len(rs), workers, 4, func(start, end int) {
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				return
			}
			out[i] = dynamo.Stability{
				R:        rs[i],
				N0:       n0,
				Steps:    steps,
				Exponent: LyapunovExponent(n0, rs[i], steps),
			}
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ChaosOnset returns the first growth rate in results with a positive
// exponent. results are scanned in order.
func ChaosOnset(results []dynamo.Stability) (float64, bool) {
	for _, s := range results {
		if s.Chaotic() {
			return s.R, true
		}
	}
	return math.NaN(), false
}
