package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/rickersim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the values of one trajectory.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Final  float64 `json:"final"`
	Finite bool    `json:"finite"`
}

// Summarize computes a Summary. Empty input yields NaN statistics.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, StdDev: nan, Min: nan, Max: nan, Final: nan}
	}

	s := Summary{
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Final:  values[len(values)-1],
		Finite: !floats.HasNaN(values),
	}
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}

	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if s.Finite {
		for _, v := range values {
			if math.IsInf(v, 0) {
				s.Finite = false
				break
			}
		}
	}
	return s
}

// New builds a metric by name. limit is used by "bounded", skip by
// "amplitude".
func New(name string, limit float64, skip int) (dynamo.Metric, error) {
	switch name {
	case "mean":
		return NewMean(), nil
	case "amplitude":
		return NewAmplitude(skip), nil
	case "bounded":
		return NewBounded(limit), nil
	default:
		return nil, fmt.Errorf("unknown metric %q (available: %s)", name, strings.Join(Names(), ", "))
	}
}

func Names() []string {
	names := []string{"mean", "amplitude", "bounded"}
	sort.Strings(names)
	return names
}
