package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// Spectrum is the one-sided power spectrum of a mean-removed trajectory.
// Freq is in cycles per step, from 0 to 0.5.
type Spectrum struct {
	Freq  []float64
	Power []float64
}

// PowerSpectrum transforms values with an FFT of their own length and keeps
// bins 0..n/2. Any length >= 2 is accepted.
func PowerSpectrum(values []float64) Spectrum {
	n := len(values)
	if n < 2 {
		return Spectrum{}
	}

	mean := stat.Mean(values, nil)
	centered := make([]float64, n)
	for i, v := range values {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)[:n/2+1]

	s := Spectrum{
		Freq:  make([]float64, len(coeffs)),
		Power: make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		s.Freq[i] = float64(i) / float64(n)
		a := cmplx.Abs(c)
		s.Power[i] = a * a / float64(n)
	}
	return s
}

// DominantPeriod returns 1/f for the strongest non-zero frequency, or 0 when
// the spectrum is flat.
func (s Spectrum) DominantPeriod() float64 {
	best := 0
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > s.Power[best] || best == 0 {
			best = i
		}
	}
	if best == 0 || s.Power[best] == 0 {
		return 0
	}
	return 1 / s.Freq[best]
}
