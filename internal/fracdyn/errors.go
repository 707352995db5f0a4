package fracdyn

import (
	"errors"
	"fmt"
)

// Domain errors for analysis operations. Divergence is deliberately
// absent: a blown-up run is an expected analysis outcome, reported as
// data on the Trace, never as an error.
var (
	// ErrInvalidParameter indicates a model parameter that is
	// non-finite or outside its valid range.
	ErrInvalidParameter = errors.New("fracdyn: parameter out of valid bounds")

	// ErrGridTooSmall indicates a grid too small for the three-point
	// stencil.
	ErrGridTooSmall = errors.New("fracdyn: grid size below stencil minimum (3)")

	// ErrInsufficientData indicates an analysis that needs more inputs
	// than were supplied (e.g. fewer than two mesh sizes).
	ErrInsufficientData = errors.New("fracdyn: insufficient data for analysis")

	// ErrShapeMismatch indicates mismatched field/noise lengths.
	ErrShapeMismatch = errors.New("fracdyn: field and noise shapes disagree")
)

// StepError wraps an error with the step and time it occurred at.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.6f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
