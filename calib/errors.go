package calib

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when up and down differ in length.
	ErrLengthMismatch = errors.New("calib: up and down must have the same length")
	// ErrInsufficientData is returned when fewer than two samples are
	// available for a fit, at entry or after a discard step.
	ErrInsufficientData = errors.New("calib: fewer than two samples available for a fit")
	// ErrDegenerateReference is returned when a relative-error reference is
	// zero, near zero or not finite.
	ErrDegenerateReference = errors.New("calib: degenerate relative-error reference")
	// ErrInvalidParameter is returned for out-of-range tuning parameters.
	ErrInvalidParameter = errors.New("calib: invalid parameter")
)

// Error describes a failed calibration. Iteration is 0 for the initial fit
// and k for the k-th refit.
type Error struct {
	Op        string
	Iteration int
	Samples   int
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("calib: %s failed at iteration %d (%d samples): %v",
		e.Op, e.Iteration, e.Samples, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
