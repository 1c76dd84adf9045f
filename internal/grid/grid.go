package grid

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rickersim/internal/dynamo"
)

var ErrEmptyAxis = errors.New("grid: axis has no values")

// Linspace returns n evenly spaced values from min to max inclusive.
// n = 1 yields [min]; n < 1 yields nil.
func Linspace(min, max float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{min}
	}
	out := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	out[n-1] = max
	return out
}

// Grid is the cross product of growth rates, carrying capacities and
// initial populations at a fixed trajectory length.
type Grid struct {
	R     []float64 `yaml:"r" json:"r"`
	K     []float64 `yaml:"k" json:"k"`
	N0    []float64 `yaml:"n0" json:"n0"`
	Steps int       `yaml:"steps" json:"steps"`
}

func (g Grid) Validate() error {
	for _, axis := range []struct {
		name   string
		values []float64
	}{{"r", g.R}, {"k", g.K}, {"n0", g.N0}} {
		if len(axis.values) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyAxis, axis.name)
		}
	}
	return dynamo.ParamSet{Steps: g.Steps}.Validate()
}

func (g Grid) Size() int {
	return len(g.R) * len(g.K) * len(g.N0)
}

// Enumerate lists every parameter set with r varying slowest and n0
// fastest.
func (g Grid) Enumerate() ([]dynamo.ParamSet, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	axes := [][]float64{g.R, g.K, g.N0}
	out := make([]dynamo.ParamSet, 0, g.Size())
	g.enumerate(0, axes, make([]float64, len(axes)), &out)
	return out, nil
}

func (g Grid) enumerate(depth int, axes [][]float64, current []float64, out *[]dynamo.ParamSet) {
	if depth == len(axes) {
		*out = append(*out, dynamo.ParamSet{
			R:     current[0],
			K:     current[1],
			N0:    current[2],
			Steps: g.Steps,
		})
		return
	}

	for _, v := range axes[depth] {
		current[depth] = v
		g.enumerate(depth+1, axes, current, out)
	}
}

// Search evaluates every parameter set and returns the one with the lowest
// score. Sets whose evaluation fails or scores NaN are skipped.
func (g Grid) Search(
	ctx context.Context,
	eval func(ctx context.Context, p dynamo.ParamSet) (float64, error),
) (dynamo.ParamSet, float64, error) {
	sets, err := g.Enumerate()
	if err != nil {
		return dynamo.ParamSet{}, 0, err
	}

	best := math.Inf(1)
	var bestParams dynamo.ParamSet
	found := false

	for _, p := range sets {
		if err := ctx.Err(); err != nil {
			return dynamo.ParamSet{}, 0, err
		}

		val, err := eval(ctx, p)
		if err != nil || math.IsNaN(val) {
			continue
		}
		if !found || val < best {
			best = val
			bestParams = p
			found = true
		}
	}

	if !found {
		return dynamo.ParamSet{}, 0, fmt.Errorf("grid: no parameter set could be evaluated")
	}
	return bestParams, best, nil
}
