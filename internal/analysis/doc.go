// Package analysis characterizes Ricker dynamics across growth rates.
//
//   - [LyapunovExponent]: stability indicator of the normalized map
//   - [LyapunovSweep]: exponents for many growth rates in parallel
//   - [Bifurcation]: trailing values of vectorized runs per growth rate
//   - [DetectPeriod]: cycle length of post-transient values
//   - [ReturnMap] and [PowerSpectrum]: views of a single trajectory
//
// # Chaos Detection
//
// A positive exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(n0/k, 3.0, 1000)
//	if lambda > 0 {
//	    // chaotic
//	}
package analysis
