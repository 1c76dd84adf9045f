package sim

import (
	"math"
	"sort"

	"github.com/san-kum/rickersim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// BatchInput describes m parameter sets that share one time axis. K and N0
// hold either one shared value or one value per entry of R.
type BatchInput struct {
	R     []float64
	K     []float64
	N0    []float64
	Steps int
}

func (in BatchInput) Size() int { return len(in.R) }

func (in BatchInput) Validate() error {
	m := len(in.R)
	if m == 0 {
		return &dynamo.ShapeError{Field: "r", Got: 0, Want: 1, Wrapped: dynamo.ErrEmptyBatch}
	}
	if len(in.K) != 1 && len(in.K) != m {
		return &dynamo.ShapeError{Field: "k", Got: len(in.K), Want: m, Wrapped: dynamo.ErrShapeMismatch}
	}
	if len(in.N0) != 1 && len(in.N0) != m {
		return &dynamo.ShapeError{Field: "n0", Got: len(in.N0), Want: m, Wrapped: dynamo.ErrShapeMismatch}
	}
	if in.Steps < 1 {
		return &dynamo.ShapeError{Field: "steps", Got: in.Steps, Want: 1, Wrapped: dynamo.ErrInvalidSteps}
	}
	return nil
}

// Params returns the parameter set of entry i.
func (in BatchInput) Params(i int) dynamo.ParamSet {
	return dynamo.ParamSet{
		R:     in.R[i],
		K:     pick(in.K, i),
		N0:    pick(in.N0, i),
		Steps: in.Steps,
	}
}

func pick(v []float64, i int) float64 {
	if len(v) == 1 {
		return v[0]
	}
	return v[i]
}

// BatchFromParams packs parameter sets into a batch. All sets must share
// the same Steps; mixed lengths fail with ErrRaggedBatch.
func BatchFromParams(ps []dynamo.ParamSet) (BatchInput, error) {
	if len(ps) == 0 {
		return BatchInput{}, &dynamo.ShapeError{Field: "params", Got: 0, Want: 1, Wrapped: dynamo.ErrEmptyBatch}
	}

	in := BatchInput{
		R:     make([]float64, len(ps)),
		K:     make([]float64, len(ps)),
		N0:    make([]float64, len(ps)),
		Steps: ps[0].Steps,
	}
	for i, p := range ps {
		if p.Steps != in.Steps {
			return BatchInput{}, &dynamo.ShapeError{Field: "steps", Got: p.Steps, Want: in.Steps, Wrapped: dynamo.ErrRaggedBatch}
		}
		in.R[i] = p.R
		in.K[i] = p.K
		in.N0[i] = p.N0
	}
	return in, nil
}

// StepGroup lists the indices of parameter sets sharing one length.
type StepGroup struct {
	Steps   int
	Indices []int
}

// GroupBySteps splits parameter sets into rectangular groups, ordered by
// length. Indices keep their original order within a group.
func GroupBySteps(ps []dynamo.ParamSet) []StepGroup {
	byLen := make(map[int][]int)
	for i, p := range ps {
		byLen[p.Steps] = append(byLen[p.Steps], i)
	}

	groups := make([]StepGroup, 0, len(byLen))
	for steps, idx := range byLen {
		groups = append(groups, StepGroup{Steps: steps, Indices: idx})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Steps < groups[j].Steps })
	return groups
}

// Batch is the output of a vectorized run: one row per parameter set, one
// column per time step. Step indices are implicit (column j is step j+1).
type Batch struct {
	input BatchInput
	data  *mat.Dense
}

// RunBatch advances every entry of the batch in lockstep. Each element goes
// through the same operations in the same order as models.Update, so rows
// are bit-identical to Series on the same parameters. Entries never interact.
func RunBatch(in BatchInput) (*Batch, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	m := in.Size()
	data := mat.NewDense(m, in.Steps, nil)

	k := defaultPool.GetFilled(in.K, m)
	n := defaultPool.GetFilled(in.N0, m)
	tmp := defaultPool.Get(m)
	defer func() {
		defaultPool.Put(k)
		defaultPool.Put(n)
		defaultPool.Put(tmp)
	}()

	data.SetCol(0, n)
	for t := 1; t < in.Steps; t++ {
		// tmp = r * (1 - n/k)
		floats.DivTo(tmp, n, k)
		floats.Scale(-1, tmp)
		floats.AddConst(1, tmp)
		floats.Mul(tmp, in.R)

		for i, v := range tmp {
			tmp[i] = math.Exp(v)
		}
		floats.Mul(n, tmp)

		data.SetCol(t, n)
	}

	return &Batch{input: in, data: data}, nil
}

func (b *Batch) Len() int   { return b.input.Size() }
func (b *Batch) Steps() int { return b.input.Steps }

// Matrix exposes the raw m x steps result.
func (b *Batch) Matrix() mat.Matrix { return b.data }

func (b *Batch) Params(i int) dynamo.ParamSet { return b.input.Params(i) }

// Trajectory copies row i out of the batch.
func (b *Batch) Trajectory(i int) dynamo.Trajectory {
	values := make([]float64, b.input.Steps)
	mat.Row(values, i, b.data)
	return dynamo.Trajectory{Params: b.input.Params(i), Values: values}
}

func (b *Batch) Trajectories() []dynamo.Trajectory {
	out := make([]dynamo.Trajectory, b.Len())
	for i := range out {
		out[i] = b.Trajectory(i)
	}
	return out
}

func (b *Batch) Collection() *dynamo.Collection {
	return &dynamo.Collection{Entries: b.Trajectories()}
}

// Tail returns the trailing n values of row i without copying the row.
func (b *Batch) Tail(i, n int) []float64 {
	row := b.data.RawRowView(i)
	if n <= 0 {
		return nil
	}
	if n >= len(row) {
		n = len(row)
	}
	out := make([]float64, n)
	copy(out, row[len(row)-n:])
	return out
}
