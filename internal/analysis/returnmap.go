package analysis

import (
	"math"
	"strings"
)

// ReturnPoint is one point (n_t, n_t+1) of a return map.
type ReturnPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ReturnMap pairs consecutive values of a trajectory. Every orbit of a
// one-dimensional map lies on the graph of the map.
func ReturnMap(values []float64) []ReturnPoint {
	if len(values) < 2 {
		return nil
	}
	out := make([]ReturnPoint, len(values)-1)
	for i := range out {
		out[i] = ReturnPoint{X: values[i], Y: values[i+1]}
	}
	return out
}

// ReturnMapToASCII draws the points with the identity line n_t+1 = n_t as a
// reference. Fixed points sit on the diagonal.
func ReturnMapToASCII(points []ReturnPoint, width, height int) string {
	if len(points) == 0 || width <= 1 || height <= 1 {
		return ""
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		for _, v := range [2]float64{p.X, p.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return ""
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.05
	hi += span * 0.05
	span = hi - lo

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for col := 0; col < width; col++ {
		row := height - 1 - col*(height-1)/(width-1)
		canvas[row][col] = '·'
	}

	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			continue
		}
		col := int((p.X - lo) / span * float64(width-1))
		row := height - 1 - int((p.Y-lo)/span*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
