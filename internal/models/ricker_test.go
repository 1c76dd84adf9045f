package models

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
)

func TestUpdate(t *testing.T) {
	tests := []struct {
		name     string
		n, r, k  float64
		expected float64
	}{
		{"zero population", 0, 2.5, 100, 0},
		{"at carrying capacity", 100, 2.5, 100, 100},
		{"zero growth", 37, 0, 100, 37},
		{"below capacity", 50, 1, 100, 50 * math.Exp(0.5)},
		{"above capacity", 150, 1, 100, 150 * math.Exp(-0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Update(tt.n, tt.r, tt.k)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Update(%v, %v, %v) = %v, want %v", tt.n, tt.r, tt.k, got, tt.expected)
			}
		})
	}
}

func TestUpdate_NonFinite(t *testing.T) {
	if got := Update(math.NaN(), 1, 1); !math.IsNaN(got) {
		t.Errorf("NaN input produced %v", got)
	}
	if got := Update(-1e6, 10, 1); !math.IsInf(got, -1) {
		t.Errorf("overflowing negative population produced %v, want -Inf", got)
	}
}

func TestUpdateDerivative_MatchesFiniteDifference(t *testing.T) {
	cases := []struct{ r, k float64 }{
		{0.5, 1}, {1.5, 100}, {2.7, 100}, {3.2, 10},
	}

	for _, c := range cases {
		for _, n := range []float64{0.1 * c.k, 0.5 * c.k, c.k, 1.7 * c.k} {
			f := func(x float64) float64 { return Update(x, c.r, c.k) }
			numeric := fd.Derivative(f, n, &fd.Settings{Formula: fd.Central})
			analytic := UpdateDerivative(n, c.r, c.k)
			if math.Abs(numeric-analytic) > 1e-5*math.Max(1, math.Abs(analytic)) {
				t.Errorf("r=%v k=%v n=%v: analytic %v, numeric %v", c.r, c.k, n, analytic, numeric)
			}
		}
	}
}

func TestNormalized_MatchesUnitCapacity(t *testing.T) {
	for _, r := range []float64{0.3, 1.9, 2.6, 3.1} {
		for _, x := range []float64{0.05, 0.5, 1, 2.3} {
			if Normalized(r, x) != Update(x, r, 1) {
				t.Errorf("Normalized(%v, %v) differs from Update with k=1", r, x)
			}
			if math.Abs(NormalizedDerivative(r, x)-UpdateDerivative(x, r, 1)) > 1e-15 {
				t.Errorf("NormalizedDerivative(%v, %v) differs from UpdateDerivative", r, x)
			}
		}
	}
}

func TestNormalizedDerivative_ZeroAtCriticalPoint(t *testing.T) {
	r := 2.0
	if d := NormalizedDerivative(r, 1/r); d != 0 {
		t.Errorf("f'(r, 1/r) = %v, want 0", d)
	}
}

func TestRicker_MatchesUpdate(t *testing.T) {
	m := NewRicker(2.8, 100)
	for _, n := range []float64{0, 1, 35.7, 100, 250} {
		if m.Next(n) != Update(n, 2.8, 100) {
			t.Errorf("Next(%v) differs from Update", n)
		}
		if m.Derivative(n) != UpdateDerivative(n, 2.8, 100) {
			t.Errorf("Derivative(%v) differs from UpdateDerivative", n)
		}
	}

	if m.Next(100) != 100 {
		t.Error("carrying capacity is not a fixed point")
	}
}
