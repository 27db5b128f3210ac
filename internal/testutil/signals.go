package testutil

import (
	"math/rand"
)

// Ramp returns n evenly spaced values start, start+step, ...
func Ramp(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// Linear evaluates slope*x[i] + intercept for every x.
func Linear(x []float64, slope, intercept float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = slope*v + intercept
	}
	return out
}

// DeterministicNoise generates uniform noise in [-amplitude, amplitude)
// with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Alternating multiplies y by (1-frac) on even and (1+frac) on odd indices.
// The result never settles within frac/2 of any single line.
func Alternating(y []float64, frac float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		if i%2 == 0 {
			out[i] = v * (1 - frac)
		} else {
			out[i] = v * (1 + frac)
		}
	}
	return out
}

// Add returns a[i] + b[i]. Panics if lengths differ.
func Add(a, b []float64) []float64 {
	if len(a) != len(b) {
		panic("testutil: length mismatch")
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}
