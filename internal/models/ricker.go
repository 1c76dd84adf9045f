package models

import (
	"math"

	"github.com/san-kum/rickersim/internal/dynamo"
)

// Update advances a Ricker population by one step:
//
//	n(t+1) = n(t) * exp(r * (1 - n(t)/k))
//
// n = 0 stays at 0. Negative or non-finite inputs follow IEEE semantics.
func Update(n, r, k float64) float64 {
	return n * math.Exp(r*(1-n/k))
}

// UpdateDerivative is d/dn of Update.
func UpdateDerivative(n, r, k float64) float64 {
	return math.Exp(r*(1-n/k)) * (1 - r*n/k)
}

// Normalized is the Ricker map with k = 1: f(r, x) = x * exp(r * (1 - x)).
func Normalized(r, x float64) float64 {
	return x * math.Exp(r*(1-x))
}

// NormalizedDerivative is f'(r, x) = exp(r * (1 - x)) * (1 - r*x).
func NormalizedDerivative(r, x float64) float64 {
	return math.Exp(r*(1-x)) * (1 - r*x)
}

// Ricker is the map n -> Update(n, r, k) with fixed parameters.
type Ricker struct {
	r, k float64
}

func NewRicker(r, k float64) *Ricker {
	return &Ricker{r: r, k: k}
}

func (m *Ricker) Next(n float64) float64 {
	return Update(n, m.r, m.k)
}

func (m *Ricker) Derivative(n float64) float64 {
	return UpdateDerivative(n, m.r, m.k)
}

var _ dynamo.Map = (*Ricker)(nil)
