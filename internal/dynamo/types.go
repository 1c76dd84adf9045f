package dynamo

import (
	"fmt"
	"math"
	"strconv"
)

// ParamSet is one simulation input: growth rate, carrying capacity,
// initial population and trajectory length.
type ParamSet struct {
	R     float64 `json:"r" yaml:"r"`
	K     float64 `json:"k" yaml:"k"`
	N0    float64 `json:"n0" yaml:"n0"`
	Steps int     `json:"steps" yaml:"steps"`
}

func (p ParamSet) Validate() error {
	if p.Steps < 1 {
		return &ShapeError{Field: "steps", Got: p.Steps, Want: 1, Wrapped: ErrInvalidSteps}
	}
	return nil
}

// Key identifies a parameter set in exported tables.
func (p ParamSet) Key() string {
	return "r=" + strconv.FormatFloat(p.R, 'g', -1, 64) +
		",k=" + strconv.FormatFloat(p.K, 'g', -1, 64) +
		",n0=" + strconv.FormatFloat(p.N0, 'g', -1, 64) +
		",steps=" + strconv.Itoa(p.Steps)
}

func (p ParamSet) String() string {
	return fmt.Sprintf("r=%.4g k=%.4g n0=%.4g steps=%d", p.R, p.K, p.N0, p.Steps)
}

type Point struct {
	Step int     `json:"step"`
	N    float64 `json:"n"`
}

// Trajectory holds the population values of one run. Values[0] is step 1.
type Trajectory struct {
	Params ParamSet  `json:"params"`
	Values []float64 `json:"values"`
}

func (t Trajectory) Len() int { return len(t.Values) }

// Points pairs every value with its 1-based time step.
func (t Trajectory) Points() []Point {
	pts := make([]Point, len(t.Values))
	for i, v := range t.Values {
		pts[i] = Point{Step: i + 1, N: v}
	}
	return pts
}

// Tail returns the trailing n values, or all of them when n exceeds the length.
func (t Trajectory) Tail(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n >= len(t.Values) {
		return t.Values
	}
	return t.Values[len(t.Values)-n:]
}

func (t Trajectory) Final() float64 {
	if len(t.Values) == 0 {
		return math.NaN()
	}
	return t.Values[len(t.Values)-1]
}

func (t Trajectory) IsFinite() bool {
	for _, v := range t.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Row is one (parameter set, step, value) triple of a collection.
type Row struct {
	Set    int
	Params ParamSet
	Step   int
	N      float64
}

// Collection maps parameter-set index to trajectory, in request order.
type Collection struct {
	Entries []Trajectory `json:"entries"`
}

func NewCollection(n int) *Collection {
	return &Collection{Entries: make([]Trajectory, n)}
}

func (c *Collection) Len() int { return len(c.Entries) }

func (c *Collection) Get(i int) (Trajectory, bool) {
	if i < 0 || i >= len(c.Entries) {
		return Trajectory{}, false
	}
	return c.Entries[i], true
}

func (c *Collection) Params() []ParamSet {
	ps := make([]ParamSet, len(c.Entries))
	for i, tr := range c.Entries {
		ps[i] = tr.Params
	}
	return ps
}

// Rows flattens the collection into tabular form, one row per value.
func (c *Collection) Rows() []Row {
	total := 0
	for _, tr := range c.Entries {
		total += tr.Len()
	}
	rows := make([]Row, 0, total)
	for i, tr := range c.Entries {
		for j, v := range tr.Values {
			rows = append(rows, Row{Set: i, Params: tr.Params, Step: j + 1, N: v})
		}
	}
	return rows
}

// Stability associates a Lyapunov exponent with the parameters it was computed for.
type Stability struct {
	R        float64 `json:"r"`
	N0       float64 `json:"n0"`
	Steps    int     `json:"steps"`
	Exponent float64 `json:"exponent"`
}

func (s Stability) Chaotic() bool { return s.Exponent > 0 }

// Map is a one-dimensional discrete-time map.
type Map interface {
	Next(n float64) float64
	Derivative(n float64) float64
}

type Metric interface {
	Name() string
	Observe(step int, n float64)
	Value() float64
	Reset()
}
