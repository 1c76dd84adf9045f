package dynamo

import (
	"errors"
	"fmt"
)

// Precondition errors for simulation inputs. Numeric edge cases (NaN, Inf)
// are never reported through these; they flow through as values.
var (
	// ErrInvalidSteps indicates a trajectory length below 1.
	ErrInvalidSteps = errors.New("dynamo: trajectory length must be at least 1")

	// ErrEmptyBatch indicates a vectorized run with no parameter sets.
	ErrEmptyBatch = errors.New("dynamo: batch has no parameter sets")

	// ErrShapeMismatch indicates parallel input sequences of incompatible lengths.
	ErrShapeMismatch = errors.New("dynamo: batch input lengths do not match")

	// ErrRaggedBatch indicates parameter sets with different lengths in one batch.
	ErrRaggedBatch = errors.New("dynamo: batch mixes trajectory lengths")

	// ErrInvalidRecord indicates a recording window outside 1..steps.
	ErrInvalidRecord = errors.New("dynamo: record window must be within the trajectory")
)

// ShapeError carries the offending field and sizes of a rejected input.
type ShapeError struct {
	Field   string
	Got     int
	Want    int
	Wrapped error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s (%s: got %d, want %d)", e.Wrapped.Error(), e.Field, e.Got, e.Want)
}

func (e *ShapeError) Unwrap() error {
	return e.Wrapped
}
