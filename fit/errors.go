package fit

import "errors"

var (
	// ErrInsufficientData is returned when fewer than two points are given.
	ErrInsufficientData = errors.New("fit: at least two points are required")
	// ErrLengthMismatch is returned when x and y differ in length.
	ErrLengthMismatch = errors.New("fit: x and y must have the same length")
	// ErrSingular is returned when all x values are identical.
	ErrSingular = errors.New("fit: x values have no spread")
	// ErrNonFinite is returned when an input value is NaN or Inf.
	ErrNonFinite = errors.New("fit: non-finite input value")
)
