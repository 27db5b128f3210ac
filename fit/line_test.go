package fit

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-radcal/internal/testutil"
)

func TestFitLine_ExactLine(t *testing.T) {
	tests := []struct {
		name             string
		slope, intercept float64
		x                []float64
	}{
		{"unit", 1, 0, testutil.Ramp(0, 1, 10)},
		{"steep", 250, -3, testutil.Ramp(-5, 0.5, 21)},
		{"negative", -0.75, 12, testutil.Ramp(1, 1, 8)},
		{"large offset", 1.98, 0.13, testutil.Ramp(20000, 1, 50)},
		{"two points", 3, 1, []float64{2, 4}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			y := testutil.Linear(tc.x, tc.slope, tc.intercept)
			l, err := FitLine(tc.x, y)
			if err != nil {
				t.Fatalf("FitLine error: %v", err)
			}
			testutil.RequireNearlyEqual(t, "slope", l.Slope, tc.slope, 1e-9*math.Max(1, math.Abs(tc.slope)))
			testutil.RequireNearlyEqual(t, "intercept", l.Intercept, tc.intercept, 1e-6)
		})
	}
}

func TestFitLine_MatchesClosedForm(t *testing.T) {
	x := testutil.Ramp(1, 1, 10)
	y := []float64{2.1, 3.9, 6.0, 8.1, 9.8, 11.9, 14.1, 15.9, 18.0, 19.9}

	l, err := FitLine(x, y)
	if err != nil {
		t.Fatalf("FitLine error: %v", err)
	}

	// Closed-form normal equations.
	n := float64(len(x))
	var sx, sy, sxx, sxy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
		sxx += x[i] * x[i]
		sxy += x[i] * y[i]
	}
	slope := (n*sxy - sx*sy) / (n*sxx - sx*sx)
	intercept := (sy - slope*sx) / n

	testutil.RequireNearlyEqual(t, "slope", l.Slope, slope, 1e-12)
	testutil.RequireNearlyEqual(t, "intercept", l.Intercept, intercept, 1e-12)
	testutil.RequireNearlyEqual(t, "slope value", l.Slope, 1.990909090909, 1e-9)
}

func TestFitLine_Errors(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want error
	}{
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}, ErrLengthMismatch},
		{"single point", []float64{1}, []float64{2}, ErrInsufficientData},
		{"empty", nil, nil, ErrInsufficientData},
		{"no spread", []float64{3, 3, 3}, []float64{1, 2, 3}, ErrSingular},
		{"nan", []float64{1, math.NaN(), 3}, []float64{1, 2, 3}, ErrNonFinite},
		{"inf", []float64{1, 2, 3}, []float64{1, math.Inf(1), 3}, ErrNonFinite},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FitLine(tc.x, tc.y)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLine_EvalIntoReusesBuffer(t *testing.T) {
	l := Line{Slope: 2, Intercept: 1}
	buf := make([]float64, 0, 8)
	out := l.EvalInto(buf, []float64{0, 1, 2})
	testutil.RequireSliceNearlyEqual(t, out, []float64{1, 3, 5}, 0)
	if &out[0] != &buf[:1][0] {
		t.Fatal("EvalInto did not reuse the provided buffer")
	}
	if got := l.At(-1); got != -1 {
		t.Fatalf("At(-1) = %v, want -1", got)
	}
}

func TestMean_Compensated(t *testing.T) {
	x := make([]float64, 0, 1001)
	x = append(x, 1e16)
	for i := 0; i < 1000; i++ {
		x = append(x, 1)
	}
	if got, want := Sum(x), 1e16+1000; got != want {
		t.Fatalf("Sum = %v, want %v", got, want)
	}
	if Mean(nil) != 0 {
		t.Fatal("Mean(nil) should be 0")
	}
}
