package fit

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-radcal/internal/testutil"
)

func TestAssess_PerfectFit(t *testing.T) {
	x := testutil.Ramp(0, 1, 16)
	y := testutil.Linear(x, 0.5, 4)
	q, err := Assess(Line{Slope: 0.5, Intercept: 4}, x, y)
	if err != nil {
		t.Fatalf("Assess error: %v", err)
	}
	if q.N != 16 || q.SSE != 0 || q.RMSE != 0 || q.R2 != 1 {
		t.Fatalf("unexpected quality %+v", q)
	}
}

func TestAssess_KnownResiduals(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, -1, 1, -1}
	q, err := Assess(Line{}, x, y)
	if err != nil {
		t.Fatalf("Assess error: %v", err)
	}
	testutil.RequireNearlyEqual(t, "SSE", q.SSE, 4, 1e-12)
	testutil.RequireNearlyEqual(t, "RMSE", q.RMSE, 1, 1e-12)
	testutil.RequireNearlyEqual(t, "R2", q.R2, 0, 1e-12)

	r := Residuals(nil, Line{Slope: 1}, x, y)
	testutil.RequireSliceNearlyEqual(t, r, []float64{1, -2, -1, -4}, 0)
}

func TestAssess_ConstantY(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{5, 5, 5}
	q, err := Assess(Line{Intercept: 4}, x, y)
	if err != nil {
		t.Fatalf("Assess error: %v", err)
	}
	if q.R2 != 0 {
		t.Fatalf("R2 = %v, want 0 for constant y with non-zero residuals", q.R2)
	}
}

func TestAssess_Errors(t *testing.T) {
	if _, err := Assess(Line{}, []float64{1}, nil); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
	if _, err := Assess(Line{}, nil, nil); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}
