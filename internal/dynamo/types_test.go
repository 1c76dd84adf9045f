package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

func TestParamSet_Validate(t *testing.T) {
	tests := []struct {
		name  string
		steps int
		valid bool
	}{
		{"one step", 1, true},
		{"many steps", 500, true},
		{"zero", 0, false},
		{"negative", -3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParamSet{R: 1, K: 1, N0: 1, Steps: tt.steps}.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidSteps) {
				t.Errorf("Validate() = %v, want ErrInvalidSteps", err)
			}
		})
	}
}

func TestShapeError(t *testing.T) {
	var err error = &ShapeError{Field: "k", Got: 3, Want: 5, Wrapped: ErrShapeMismatch}

	if !errors.Is(err, ErrShapeMismatch) {
		t.Error("ShapeError does not unwrap to its sentinel")
	}

	var se *ShapeError
	if !errors.As(err, &se) || se.Field != "k" {
		t.Errorf("errors.As failed: %v", se)
	}

	expected := "dynamo: batch input lengths do not match (k: got 3, want 5)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestTrajectory_Points(t *testing.T) {
	tr := Trajectory{Values: []float64{5, 6, 7}}
	pts := tr.Points()

	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	for i, p := range pts {
		if p.Step != i+1 {
			t.Errorf("point %d: step = %d, want %d", i, p.Step, i+1)
		}
		if p.N != tr.Values[i] {
			t.Errorf("point %d: n = %v, want %v", i, p.N, tr.Values[i])
		}
	}
}

func TestTrajectory_Tail(t *testing.T) {
	tr := Trajectory{Values: []float64{1, 2, 3, 4, 5}}

	tests := []struct {
		n    int
		want []float64
	}{
		{2, []float64{4, 5}},
		{5, []float64{1, 2, 3, 4, 5}},
		{10, []float64{1, 2, 3, 4, 5}},
		{0, nil},
	}

	for _, tt := range tests {
		got := tr.Tail(tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("Tail(%d) = %v, want %v", tt.n, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tail(%d) = %v, want %v", tt.n, got, tt.want)
				break
			}
		}
	}
}

func TestTrajectory_FinalAndFinite(t *testing.T) {
	if !math.IsNaN((Trajectory{}).Final()) {
		t.Error("Final() of empty trajectory should be NaN")
	}

	tr := Trajectory{Values: []float64{1, math.Inf(1)}}
	if tr.IsFinite() {
		t.Error("trajectory with +Inf reported finite")
	}
	if !math.IsInf(tr.Final(), 1) {
		t.Errorf("Final() = %v, want +Inf", tr.Final())
	}
}

func TestCollection_Rows(t *testing.T) {
	c := NewCollection(2)
	c.Entries[0] = Trajectory{Params: ParamSet{R: 1, Steps: 2}, Values: []float64{1, 2}}
	c.Entries[1] = Trajectory{Params: ParamSet{R: 2, Steps: 3}, Values: []float64{3, 4, 5}}

	rows := c.Rows()
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}

	last := rows[4]
	if last.Set != 1 || last.Step != 3 || last.N != 5 || last.Params.R != 2 {
		t.Errorf("unexpected last row: %+v", last)
	}

	if _, ok := c.Get(2); ok {
		t.Error("Get out of range returned ok")
	}
	if got := c.Params(); len(got) != 2 || got[1].R != 2 {
		t.Errorf("Params() = %v", got)
	}
}

func TestParamSet_Key(t *testing.T) {
	a := ParamSet{R: 2.5, K: 100, N0: 50, Steps: 10}
	b := a
	b.R = 2.6

	if a.Key() == b.Key() {
		t.Error("distinct parameter sets share a key")
	}
	if a.Key() != "r=2.5,k=100,n0=50,steps=10" {
		t.Errorf("Key() = %q", a.Key())
	}
}

func TestParallelFor_CoversRange(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 8} {
		n := 1000
		hits := make([]int32, n)
		ParallelFor(n, workers, 16, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("workers=%d: index %d visited %d times", workers, i, h)
			}
		}
	}
}

func TestParallelFor_Empty(t *testing.T) {
	called := false
	ParallelFor(0, 4, 1, func(start, end int) { called = true })
	if called {
		t.Error("fn called for empty range")
	}
}
