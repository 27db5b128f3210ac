package diagnostics

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

var (
	// ErrEmptyInput is returned for an empty residual series.
	ErrEmptyInput = errors.New("diagnostics: empty input")
	// ErrZeroVariance is returned when the residuals are constant, so no
	// correlation can be normalised.
	ErrZeroVariance = errors.New("diagnostics: residuals have zero variance")
)

// Autocorrelation returns the normalised, mean-removed autocorrelation of x
// for lags 0..maxLag (biased estimator, so acf[0] == 1). maxLag is clamped
// to len(x)-1.
//
// The circular correlation is computed as IFFT(|FFT(x)|^2) on a zero-padded
// buffer of at least 2*len(x)-1 points, which equals the linear correlation.
func Autocorrelation(x []float64, maxLag int) ([]float64, error) {
	n := len(x)
	if n == 0 {
		return nil, ErrEmptyInput
	}
	if maxLag < 0 {
		maxLag = 0
	}
	if maxLag > n-1 {
		maxLag = n - 1
	}

	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	fftSize := nextPowerOf2(2*n - 1)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: failed to create FFT plan: %w", err)
	}

	padded := make([]complex128, fftSize)
	for i, v := range x {
		padded[i] = complex(v-mean, 0)
	}

	freq := make([]complex128, fftSize)
	if err := plan.Forward(freq, padded); err != nil {
		return nil, fmt.Errorf("diagnostics: forward FFT failed: %w", err)
	}
	for i, c := range freq {
		freq[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	if err := plan.Inverse(padded, freq); err != nil {
		return nil, fmt.Errorf("diagnostics: inverse FFT failed: %w", err)
	}

	zeroLag := real(padded[0])
	if zeroLag <= 0 {
		return nil, ErrZeroVariance
	}

	acf := make([]float64, maxLag+1)
	for k := range acf {
		acf[k] = real(padded[k]) / zeroLag
	}
	acf[0] = 1

	return acf, nil
}

// DurbinWatson returns sum((r[i]-r[i-1])^2) / sum(r[i]^2). Values near 2
// indicate uncorrelated residuals, values towards 0 positive serial
// correlation and towards 4 negative serial correlation.
func DurbinWatson(r []float64) (float64, error) {
	if len(r) < 2 {
		return 0, ErrEmptyInput
	}

	energy := sumSquares(r)
	if energy == 0 {
		return 0, ErrZeroVariance
	}

	var num float64
	for i := 1; i < len(r); i++ {
		d := r[i] - r[i-1]
		num += d * d
	}

	return num / energy, nil
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
