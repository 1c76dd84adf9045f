package metrics

import "math"

// Amplitude is max - min over the values observed after skip steps. Fixed
// points give 0; cycles and chaos give the width of the attractor.
type Amplitude struct {
	name     string
	skip     int
	min, max float64
	samples  int
}

func NewAmplitude(skip int) *Amplitude {
	return &Amplitude{
		name: "amplitude",
		skip: skip,
	}
}

func (a *Amplitude) Name() string {
	return a.name
}

func (a *Amplitude) Observe(step int, n float64) {
	if step <= a.skip {
		return
	}
	if a.samples == 0 {
		a.min, a.max = n, n
	} else {
		a.min = math.Min(a.min, n)
		a.max = math.Max(a.max, n)
	}
	a.samples++
}

func (a *Amplitude) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.max - a.min
}

func (a *Amplitude) Reset() {
	a.samples = 0
	a.min, a.max = 0, 0
}
