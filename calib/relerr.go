package calib

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-radcal/fit"
)

// referenceEpsilon scales the near-zero guard on relative-error references.
const referenceEpsilon = 1e-12

// degenerate reports whether ref cannot serve as a denominator for data
// whose magnitude is scale.
func degenerate(ref, scale float64) bool {
	if math.IsNaN(ref) || math.IsInf(ref, 0) {
		return true
	}
	return math.Abs(ref) <= referenceEpsilon*math.Max(1, scale)
}

func maxAbs(x []float64) float64 {
	var m float64
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// relativeToFitted scores each sample against its own fitted value:
// |fitted[i]-y[i]| / |fitted[i]|. Used for the initial fit only.
func relativeToFitted(dst, fitted, y []float64) (float64, error) {
	scale := maxAbs(y)
	var worst float64
	for i := range fitted {
		if degenerate(fitted[i], scale) {
			return 0, fmt.Errorf("%w: fitted value %v at sample %d", ErrDegenerateReference, fitted[i], i)
		}
		dst[i] = math.Abs(fitted[i]-y[i]) / math.Abs(fitted[i])
		worst = math.Max(worst, dst[i])
	}
	return worst, nil
}

// relativeToMean scores each sample against the mean fitted value of the
// working set: |fitted[i]-y[i]| / |mean(fitted)|. Used for every refit.
//
// NOTE: the switch from per-sample to mean reference after the first fit
// matches the historical procedure and changes which samples are kept.
// Unifying the two needs sign-off from the station calibration owners.
func relativeToMean(dst, fitted, y []float64) (float64, error) {
	ref := fit.Mean(fitted)
	if degenerate(ref, maxAbs(y)) {
		return 0, fmt.Errorf("%w: mean fitted value %v", ErrDegenerateReference, ref)
	}
	ref = math.Abs(ref)

	var worst float64
	for i := range fitted {
		dst[i] = math.Abs(fitted[i]-y[i]) / ref
		worst = math.Max(worst, dst[i])
	}
	return worst, nil
}
