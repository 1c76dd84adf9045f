// Package dynamo provides the core value types shared by the simulation,
// analysis and storage packages.
//
//   - [ParamSet]: one (r, k, n0, steps) input
//   - [Trajectory]: the values produced for one parameter set
//   - [Collection]: trajectories keyed by parameter-set index
//   - [Stability]: a Lyapunov exponent for one parameter set
//   - [Map]: a one-dimensional discrete map with an analytic derivative
//
// # Errors
//
// Input contract violations are reported as [ShapeError] values wrapping one
// of the package sentinels, so callers can match them with errors.Is:
//
//	if errors.Is(err, dynamo.ErrRaggedBatch) {
//	    // split by length and retry
//	}
//
// Numeric edge cases are not errors. NaN and ±Inf are returned as values.
package dynamo
