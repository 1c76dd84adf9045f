package grid

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5))
	assert.Equal(t, []float64{2.5}, Linspace(2.5, 3, 1))
	assert.Nil(t, Linspace(0, 1, 0))

	vals := Linspace(1.5, 3.0, 7)
	require.Len(t, vals, 7)
	assert.Equal(t, 3.0, vals[6])
}

func TestGridEnumerate(t *testing.T) {
	g := Grid{
		R:     []float64{1, 2},
		K:     []float64{10},
		N0:    []float64{0.5, 5, 50},
		Steps: 20,
	}
	require.Equal(t, 6, g.Size())

	sets, err := g.Enumerate()
	require.NoError(t, err)
	require.Len(t, sets, 6)

	assert.Equal(t, dynamo.ParamSet{R: 1, K: 10, N0: 0.5, Steps: 20}, sets[0])
	assert.Equal(t, dynamo.ParamSet{R: 1, K: 10, N0: 50, Steps: 20}, sets[2])
	assert.Equal(t, dynamo.ParamSet{R: 2, K: 10, N0: 0.5, Steps: 20}, sets[3])

	seen := make(map[string]bool)
	for _, p := range sets {
		assert.False(t, seen[p.Key()], "duplicate %s", p.Key())
		seen[p.Key()] = true
	}
}

func TestGridValidate(t *testing.T) {
	_, err := Grid{R: []float64{1}, K: nil, N0: []float64{1}, Steps: 5}.Enumerate()
	require.ErrorIs(t, err, ErrEmptyAxis)
	assert.Contains(t, err.Error(), "k")

	_, err = Grid{R: []float64{1}, K: []float64{1}, N0: []float64{1}, Steps: 0}.Enumerate()
	require.True(t, errors.Is(err, dynamo.ErrInvalidSteps))
}

func TestGridSearch(t *testing.T) {
	g := Grid{
		R:     Linspace(0, 3, 4),
		K:     []float64{1, 2},
		N0:    []float64{1},
		Steps: 1,
	}

	// distance of r from 2 plus k
	best, score, err := g.Search(context.Background(), func(_ context.Context, p dynamo.ParamSet) (float64, error) {
		if p.R == 0 {
			return 0, errors.New("skip")
		}
		d := p.R - 2
		if d < 0 {
			d = -d
		}
		return d + p.K, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, best.R)
	assert.Equal(t, 1.0, best.K)
	assert.Equal(t, 1.0, score)
}

func TestGridSearch_NothingEvaluated(t *testing.T) {
	g := Grid{R: []float64{1}, K: []float64{1}, N0: []float64{1}, Steps: 1}
	_, _, err := g.Search(context.Background(), func(context.Context, dynamo.ParamSet) (float64, error) {
		return 0, errors.New("fail")
	})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = g.Search(ctx, func(context.Context, dynamo.ParamSet) (float64, error) { return 1, nil })
	assert.ErrorIs(t, err, context.Canceled)
}
