package diagnostics

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Summary holds residual statistics.
type Summary struct {
	Length      int
	Mean        float64
	RMS         float64
	Peak        float64 // max |r|
	PeakIndex   int
	Variance    float64 // population variance
	StdDev      float64
	Skewness    float64
	Kurtosis    float64 // excess kurtosis
	Energy      float64 // sum of squares
	SignChanges int
}

// Summarize computes residual statistics in a single Welford pass.
func Summarize(r []float64) Summary {
	n := len(r)
	if n == 0 {
		return Summary{}
	}

	var mean, m2, m3, m4 float64
	var peak float64
	var peakIdx, signChanges int

	for i, x := range r {
		ni := float64(i + 1)
		delta := x - mean
		deltaN := delta / ni
		deltaN2 := deltaN * deltaN
		term1 := delta * deltaN * float64(i)

		// M4 before M3, M3 before M2.
		m4 += term1*deltaN2*(ni*ni-3*ni+3) + 6*deltaN2*m2 - 4*deltaN*m3
		m3 += term1*deltaN*(float64(i)-1) - 3*deltaN*m2
		m2 += term1
		mean += deltaN

		if a := math.Abs(x); a > peak {
			peak = a
			peakIdx = i
		}
		if i > 0 && r[i-1]*x < 0 {
			signChanges++
		}
	}

	energy := sumSquares(r)
	nf := float64(n)
	variance := m2 / nf

	s := Summary{
		Length:      n,
		Mean:        mean,
		RMS:         math.Sqrt(energy / nf),
		Peak:        peak,
		PeakIndex:   peakIdx,
		Variance:    variance,
		StdDev:      math.Sqrt(variance),
		Energy:      energy,
		SignChanges: signChanges,
	}
	if variance > 0 {
		s.Skewness = (m3 / nf) / (variance * math.Sqrt(variance))
		s.Kurtosis = (m4/nf)/(variance*variance) - 3
	}

	return s
}

func sumSquares(x []float64) float64 {
	sq := make([]float64, len(x))
	vecmath.MulBlock(sq, x, x)

	// Kahan summation.
	var sum, c float64
	for _, v := range sq {
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}
	return sum
}
