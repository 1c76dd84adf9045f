package analysis

import (
	"math"
	"sort"
	"strings"

	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/sim"
)

// BifurcationPoint holds the trailing values of one run for a growth rate.
type BifurcationPoint struct {
	R      float64   `json:"r"`
	Values []float64 `json:"values"`
}

// Distinct returns the sorted values of p with neighbours closer than tol
// merged. A period-p orbit yields p values.
func (p BifurcationPoint) Distinct(tol float64) []float64 {
	vals := make([]float64, 0, len(p.Values))
	for _, v := range p.Values {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	sort.Float64s(vals)

	out := vals[:0]
	for i, v := range vals {
		if i == 0 || v-out[len(out)-1] > tol {
			out = append(out, v)
		}
	}
	return out
}

// Pair is one point of a bifurcation diagram.
type Pair struct {
	R float64 `json:"r"`
	N float64 `json:"n"`
}

// Bifurcation runs the Ricker map from n0 for every growth rate in rs and
// keeps the last record values of each run. Rates are split into contiguous
// chunks, each advanced as one vectorized batch.
func Bifurcation(rs []float64, k, n0 float64, steps, record, workers int) ([]BifurcationPoint, error) {
	if len(rs) == 0 {
		return nil, &dynamo.ShapeError{Field: "r", Got: 0, Want: 1, Wrapped: dynamo.ErrEmptyBatch}
	}
	if steps < 1 {
		return nil, &dynamo.ShapeError{Field: "steps", Got: steps, Want: 1, Wrapped: dynamo.ErrInvalidSteps}
	}
	if record < 1 || record > steps {
		return nil, &dynamo.ShapeError{Field: "record", Got: record, Want: steps, Wrapped: dynamo.ErrInvalidRecord}
	}

	out := make([]BifurcationPoint, len(rs))
	errs := make([]error, len(rs))

	dynamo.ParallelFor(len(rs), workers, 16, func(start, end int) {
		b, err := sim.RunBatch(sim.BatchInput{
			R:     rs[start:end],
			K:     []float64{k},
			N0:    []float64{n0},
			Steps: steps,
		})
		if err != nil {
			errs[start] = err
			return
		}
		for i := start; i < end; i++ {
			out[i] = BifurcationPoint{R: rs[i], Values: b.Tail(i-start, record)}
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Pairs flattens a diagram into (r, n) points in sweep order.
func Pairs(points []BifurcationPoint) []Pair {
	total := 0
	for _, p := range points {
		total += len(p.Values)
	}

	out := make([]Pair, 0, total)
	for _, p := range points {
		for _, v := range p.Values {
			out = append(out, Pair{R: p.R, N: v})
		}
	}
	return out
}

// BifurcationToASCII draws the diagram on a width x height character grid,
// one column band per growth rate. Non-finite values are skipped.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	found := false
	for _, p := range data {
		for _, v := range p.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if !found {
				minVal, maxVal = v, v
				found = true
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if !found {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		for _, v := range p.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
