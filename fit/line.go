package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Line is the model y = Slope*x + Intercept.
type Line struct {
	Slope     float64
	Intercept float64
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// EvalInto writes l.At(x[i]) into dst and returns it. dst is reused when it
// has enough capacity, otherwise a new slice is allocated.
func (l Line) EvalInto(dst, x []float64) []float64 {
	if cap(dst) < len(x) {
		dst = make([]float64, len(x))
	}
	dst = dst[:len(x)]
	for i, v := range x {
		dst[i] = l.Slope*v + l.Intercept
	}

	return dst
}

// String formats the line as an equation.
func (l Line) String() string {
	return fmt.Sprintf("y = %g*x %+g", l.Slope, l.Intercept)
}

// FitLine returns the unweighted least-squares line through (x[i], y[i]).
func FitLine(x, y []float64) (Line, error) {
	n := len(x)
	if n != len(y) {
		return Line{}, ErrLengthMismatch
	}
	if n < 2 {
		return Line{}, ErrInsufficientData
	}
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			return Line{}, fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}

	// Centre x so the two design columns are orthogonal.
	mx := Mean(x)
	design := mat.NewDense(n, 2, nil)
	spread := false
	for i, v := range x {
		c := v - mx
		if c != 0 {
			spread = true
		}
		design.Set(i, 0, c)
		design.Set(i, 1, 1)
	}
	if !spread {
		return Line{}, ErrSingular
	}

	var qr mat.QR
	qr.Factorize(design)

	var coef mat.VecDense
	if err := qr.SolveVecTo(&coef, false, mat.NewVecDense(n, y)); err != nil {
		return Line{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	slope := coef.AtVec(0)
	return Line{
		Slope:     slope,
		Intercept: coef.AtVec(1) - slope*mx,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
