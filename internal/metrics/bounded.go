package metrics

import "math"

// Bounded reports the fraction of observed values that are finite and lie in
// [0, limit]. A run that never leaves the band scores 1.
type Bounded struct {
	name       string
	limit      float64
	violations int
	samples    int
}

func NewBounded(limit float64) *Bounded {
	return &Bounded{
		name:  "bounded",
		limit: limit,
	}
}

func (b *Bounded) Name() string {
	return b.name
}

func (b *Bounded) Observe(step int, n float64) {
	b.samples++
	if math.IsNaN(n) || n < 0 || n > b.limit {
		b.violations++
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}
