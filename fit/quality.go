package fit

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Quality summarises how well a line describes a set of points.
type Quality struct {
	N    int
	SSE  float64 // sum of squared residuals
	RMSE float64 // sqrt(SSE / N)
	R2   float64 // coefficient of determination
}

// Residuals writes y[i] - l.At(x[i]) into dst and returns it.
// dst is reused when it has enough capacity.
func Residuals(dst []float64, l Line, x, y []float64) []float64 {
	dst = l.EvalInto(dst, x)
	for i := range dst {
		dst[i] = y[i] - dst[i]
	}

	return dst
}

// Assess computes fit-quality metrics of l against the points (x, y).
func Assess(l Line, x, y []float64) (Quality, error) {
	if len(x) != len(y) {
		return Quality{}, ErrLengthMismatch
	}
	if len(x) == 0 {
		return Quality{}, ErrInsufficientData
	}

	r := Residuals(nil, l, x, y)
	sq := make([]float64, len(r))
	vecmath.MulBlock(sq, r, r)
	sse := Sum(sq)

	my := Mean(y)
	var sst KahanSum
	for _, v := range y {
		d := v - my
		sst.Add(d * d)
	}

	q := Quality{
		N:    len(x),
		SSE:  sse,
		RMSE: math.Sqrt(sse / float64(len(x))),
	}
	switch {
	case sst.Sum > 0:
		q.R2 = 1 - sse/sst.Sum
	case sse == 0:
		q.R2 = 1
	}

	return q, nil
}
