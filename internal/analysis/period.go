package analysis

import "math"

// Aperiodic is returned by DetectPeriod when no cycle is found.
const Aperiodic = -1

// DetectPeriod returns the smallest p in 1..maxPeriod such that every value
// repeats p steps later within tol. Callers should pass post-transient
// values. At least 2*maxPeriod values are required.
func DetectPeriod(values []float64, maxPeriod int, tol float64) int {
	if maxPeriod < 1 || len(values) < 2*maxPeriod {
		return Aperiodic
	}

	for period := 1; period <= maxPeriod; period++ {
		periodic := true
		for i := 0; i+period < len(values); i++ {
			if !(math.Abs(values[i]-values[i+period]) <= tol) {
				periodic = false
				break
			}
		}
		if periodic {
			return period
		}
	}

	return Aperiodic
}
