package calib

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/pion/logging"

	"github.com/cwbudde/algo-radcal/fit"
	"github.com/cwbudde/algo-radcal/internal/testutil"
)

var (
	rampUp    = testutil.Ramp(1, 1, 10)
	cleanDown = []float64{2.1, 3.9, 6.0, 8.1, 9.8, 11.9, 14.1, 15.9, 18.0, 19.9}
)

// noisyDown is y = 2x + 30 plus bounded uniform noise for x = 1..40.
var noisyDown = []float64{
	29.181, 28.414, 38.415, 31.159, 40.574, 39.851, 36.928, 46.119, 40.600, 48.938,
	45.118, 47.451, 54.792, 63.230, 53.981, 57.572, 66.039, 73.163, 69.234, 68.347,
	79.620, 66.745, 81.735, 74.634, 74.308, 75.885, 80.936, 91.058, 82.892, 91.306,
	94.223, 91.958, 96.764, 91.005, 92.954, 97.295, 106.886, 104.841, 105.026, 111.369,
}

// alternatingDown is (2x + 20) scaled alternately by 0.9 and 1.1, x = 1..20.
func alternatingDown() ([]float64, []float64) {
	up := testutil.Ramp(1, 1, 20)
	return up, testutil.Alternating(testutil.Linear(up, 2, 20), 0.1)
}

func requireAligned(t *testing.T, res Result) {
	t.Helper()
	n := len(res.RetainedIndex)
	if len(res.RetainedUp) != n || len(res.RetainedDown) != n || len(res.Fitted) != n || len(res.RelativeError) != n {
		t.Fatalf("retained slices differ in length: up %d down %d index %d fitted %d err %d",
			len(res.RetainedUp), len(res.RetainedDown), n, len(res.Fitted), len(res.RelativeError))
	}
	for i, idx := range res.RetainedIndex {
		if i > 0 && idx <= res.RetainedIndex[i-1] {
			t.Fatalf("retained indices not strictly increasing at %d: %v", i, res.RetainedIndex)
		}
		if res.RetainedUp[i] != res.OriginalUp[idx] || res.RetainedDown[i] != res.OriginalDown[idx] {
			t.Fatalf("pair %d misaligned with input index %d", i, idx)
		}
	}
}

func TestCalibrate_ExactLineNeedsNoIteration(t *testing.T) {
	down := testutil.Linear(rampUp, 2, 1)
	res, err := Calibrate(rampUp, down)
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	if !res.Converged || res.IterationsRun != 0 || len(res.Steps) != 0 {
		t.Fatalf("converged=%v iterations=%d steps=%d, want converged in 0", res.Converged, res.IterationsRun, len(res.Steps))
	}
	if len(res.RetainedUp) != len(rampUp) {
		t.Fatalf("retained %d, want %d", len(res.RetainedUp), len(rampUp))
	}
	testutil.RequireNearlyEqual(t, "slope", res.Slope, 2, 1e-12)
	testutil.RequireNearlyEqual(t, "intercept", res.Intercept, 1, 1e-12)
	testutil.RequireSliceNearlyEqual(t, res.Fitted, down, 1e-12)
	requireAligned(t, res)
}

func TestCalibrate_CleanScenario(t *testing.T) {
	res, err := Calibrate(rampUp, cleanDown)
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	if !res.Converged {
		t.Fatalf("expected convergence, max relative error %v", res.MaxRelativeError)
	}
	if res.IterationsRun > 1 {
		t.Fatalf("iterations = %d, want at most 1", res.IterationsRun)
	}
	if len(res.RetainedUp) != 10 || len(res.Discarded()) != 0 {
		t.Fatalf("retained %d samples, want all 10", len(res.RetainedUp))
	}
	testutil.RequireNearlyEqual(t, "slope", res.Slope, 2, 0.01)
	testutil.RequireNearlyEqual(t, "intercept", res.Intercept, 0, 0.05)
	testutil.RequireFinite(t, res.RelativeError)
	if res.MaxRelativeError > 0.03 {
		t.Fatalf("max relative error %v above threshold", res.MaxRelativeError)
	}
}

func TestCalibrate_SingleOutlierDiscarded(t *testing.T) {
	up := testutil.Ramp(10, 1, 10)
	down := make([]float64, len(up))
	for i, u := range up {
		if i%2 == 0 {
			down[i] = 2*u + 0.1
		} else {
			down[i] = 2*u - 0.1
		}
	}
	down[3] = 50

	res, err := Calibrate(up, down)
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	if !res.Converged || res.IterationsRun != 1 {
		t.Fatalf("converged=%v iterations=%d, want converged after 1", res.Converged, res.IterationsRun)
	}
	if got := res.Steps[0].Discarded; len(got) != 1 || got[0] != 3 {
		t.Fatalf("first round discarded %v, want [3]", got)
	}
	if len(res.RetainedUp) != 9 || len(res.RetainedDown) != 9 {
		t.Fatalf("retained %d/%d, want 9", len(res.RetainedUp), len(res.RetainedDown))
	}
	testutil.RequireNearlyEqual(t, "slope", res.Slope, 1.991667, 1e-5)
	testutil.RequireNearlyEqual(t, "intercept", res.Intercept, 0.133333, 1e-4)
	requireAligned(t, res)
}

func TestCalibrate_OutlierNearOriginUsesPerSampleReference(t *testing.T) {
	// With readings close to zero the first-fit reference (the per-sample
	// fitted value) is small, so the low end is discarded with the outlier.
	down := append([]float64(nil), cleanDown...)
	down[3] = 50

	res, err := Calibrate(rampUp, down)
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	if !res.Converged || res.IterationsRun != 1 {
		t.Fatalf("converged=%v iterations=%d", res.Converged, res.IterationsRun)
	}
	discarded := res.Steps[0].Discarded
	found := false
	for _, idx := range discarded {
		if idx == 3 {
			found = true
		}
	}
	if !found {
		t.Fatalf("outlier not discarded in first round: %v", discarded)
	}
	want := []int{6, 7, 8, 9}
	if len(res.RetainedIndex) != len(want) {
		t.Fatalf("retained %v, want %v", res.RetainedIndex, want)
	}
	for i := range want {
		if res.RetainedIndex[i] != want[i] {
			t.Fatalf("retained %v, want %v", res.RetainedIndex, want)
		}
	}
	testutil.RequireNearlyEqual(t, "slope", res.Slope, 1.95, 1e-9)
	testutil.RequireNearlyEqual(t, "intercept", res.Intercept, 0.4, 1e-9)
}

func TestCalibrate_MaxIterationsExhausted(t *testing.T) {
	up, down := alternatingDown()
	res, err := Calibrate(up, down, WithMaxIterations(2))
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	if res.Converged {
		t.Fatal("expected no convergence")
	}
	if res.IterationsRun != 2 || len(res.Steps) != 2 {
		t.Fatalf("iterations = %d steps = %d, want 2", res.IterationsRun, len(res.Steps))
	}
	if res.MaxRelativeError <= 0.03 {
		t.Fatalf("max relative error %v should exceed threshold", res.MaxRelativeError)
	}
	if len(res.Steps[0].Discarded) != 0 {
		t.Fatalf("first round discarded %v, want none", res.Steps[0].Discarded)
	}
	if len(res.RetainedUp) != 19 {
		t.Fatalf("retained %d, want 19", len(res.RetainedUp))
	}
	requireAligned(t, res)
}

func TestCalibrate_ZeroIterationBudget(t *testing.T) {
	up, down := alternatingDown()
	res, err := Calibrate(up, down, WithMaxIterations(0))
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	if res.Converged || res.IterationsRun != 0 || len(res.Steps) != 0 {
		t.Fatalf("converged=%v iterations=%d", res.Converged, res.IterationsRun)
	}
	if len(res.RetainedUp) != len(up) {
		t.Fatalf("retained %d, want %d", len(res.RetainedUp), len(up))
	}
}

func TestCalibrate_SpeedScheduleAndShrinkage(t *testing.T) {
	up, down := alternatingDown()
	res, err := Calibrate(up, down)
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	if !res.Converged {
		t.Fatalf("expected convergence, max relative error %v", res.MaxRelativeError)
	}

	wantSpeeds := []int{6, 5, 4, 3, 2, 1}
	wantRetained := []int{20, 19, 16, 12, 10, 7}
	if len(res.Steps) != len(wantSpeeds) {
		t.Fatalf("steps = %d, want %d", len(res.Steps), len(wantSpeeds))
	}
	prev := len(up)
	for i, s := range res.Steps {
		if s.Iteration != i+1 {
			t.Fatalf("step %d has iteration %d", i, s.Iteration)
		}
		if s.Speed != wantSpeeds[i] {
			t.Fatalf("step %d speed = %d, want %d", i, s.Speed, wantSpeeds[i])
		}
		testutil.RequireNearlyEqual(t, "discard limit", s.DiscardLimit, float64(s.Speed)*0.03, 1e-15)
		if s.Retained != wantRetained[i] {
			t.Fatalf("step %d retained = %d, want %d", i, s.Retained, wantRetained[i])
		}
		if s.Retained > prev || prev-s.Retained != len(s.Discarded) {
			t.Fatalf("step %d: retained %d after %d with %d discarded", i, s.Retained, prev, len(s.Discarded))
		}
		prev = s.Retained
	}
	if len(res.RetainedUp) != 7 {
		t.Fatalf("retained %d, want 7", len(res.RetainedUp))
	}
	requireAligned(t, res)
}

func TestCalibrate_SpeedFloor(t *testing.T) {
	up := testutil.Ramp(1, 1, len(noisyDown))
	res, err := Calibrate(up, noisyDown, WithInitialSpeed(1))
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	if len(res.Steps) < 2 {
		t.Fatalf("steps = %d, want several rounds at the floor", len(res.Steps))
	}
	for _, s := range res.Steps {
		if s.Speed != 1 {
			t.Fatalf("step %d speed = %d, want 1", s.Iteration, s.Speed)
		}
	}
	if !res.Converged {
		t.Fatalf("expected convergence, max relative error %v", res.MaxRelativeError)
	}
	requireAligned(t, res)
}

func TestCalibrate_Properties(t *testing.T) {
	up := testutil.Ramp(1, 1, 60)
	for seed := int64(1); seed <= 12; seed++ {
		down := testutil.Add(testutil.Linear(up, 1.5, 40), testutil.DeterministicNoise(seed, 6, len(up)))
		for _, speed := range []int{1, 3, 6, 12} {
			for _, maxIter := range []int{0, 1, 3, 100} {
				res, err := Calibrate(up, down, WithInitialSpeed(speed), WithMaxIterations(maxIter))
				if err != nil {
					if !errors.Is(err, ErrInsufficientData) {
						t.Fatalf("seed %d speed %d: unexpected error %v", seed, speed, err)
					}
					continue
				}
				if res.IterationsRun > maxIter || len(res.Steps) != res.IterationsRun {
					t.Fatalf("seed %d: iterations %d steps %d budget %d", seed, res.IterationsRun, len(res.Steps), maxIter)
				}
				if !res.Converged && res.IterationsRun != maxIter {
					t.Fatalf("seed %d: stopped early without converging", seed)
				}
				prev, prevSpeed := len(up), speed+1
				for _, s := range res.Steps {
					if s.Speed < 1 || s.Speed > prevSpeed {
						t.Fatalf("seed %d: speed %d after %d", seed, s.Speed, prevSpeed)
					}
					if s.Retained > prev {
						t.Fatalf("seed %d: working set grew from %d to %d", seed, prev, s.Retained)
					}
					prev, prevSpeed = s.Retained, s.Speed
				}
				requireAligned(t, res)
			}
		}
	}
}

func TestCalibrate_Standard(t *testing.T) {
	down := testutil.Linear(rampUp, 4, 2)
	res, err := Calibrate(rampUp, down, WithStandard(2))
	if err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	testutil.RequireNearlyEqual(t, "slope", res.Slope, 2, 1e-12)
	testutil.RequireNearlyEqual(t, "intercept", res.Intercept, 1, 1e-12)
	testutil.RequireSliceNearlyEqual(t, res.OriginalDown, testutil.Linear(rampUp, 2, 1), 1e-12)
}

func TestCalibrate_DoesNotModifyInput(t *testing.T) {
	up, down := alternatingDown()
	upCopy := append([]float64(nil), up...)
	downCopy := append([]float64(nil), down...)

	if _, err := Calibrate(up, down, WithStandard(3)); err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, up, upCopy, 0)
	testutil.RequireSliceNearlyEqual(t, down, downCopy, 0)
}

func TestCalibrate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		up, down  []float64
		opts      []Option
		want      error
		op        string
		iteration int
	}{
		{"length mismatch", []float64{1, 2, 3, 4, 5}, []float64{1, 2, 3, 4}, nil, ErrLengthMismatch, "validate", 0},
		{"single sample", []float64{1}, []float64{2}, nil, ErrInsufficientData, "validate", 0},
		{"empty", nil, nil, nil, ErrInsufficientData, "validate", 0},
		{"all discarded", []float64{1, 2, 3}, []float64{10, 1, 10}, nil, ErrInsufficientData, "discard", 1},
		{"zero fitted value", []float64{-1, 0, 1}, []float64{-1, 0, 1}, nil, ErrDegenerateReference, "relative error", 0},
		{"no spread", []float64{2, 2, 2}, []float64{1, 2, 3}, nil, fit.ErrSingular, "fit", 0},
		{"nan input", []float64{1, 2, 3}, []float64{1, math.NaN(), 3}, nil, fit.ErrNonFinite, "fit", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Calibrate(tc.up, tc.down, tc.opts...)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("err = %T, want *Error", err)
			}
			if cerr.Op != tc.op || cerr.Iteration != tc.iteration {
				t.Fatalf("op=%q iteration=%d, want %q/%d", cerr.Op, cerr.Iteration, tc.op, tc.iteration)
			}
			if !strings.Contains(err.Error(), tc.op) {
				t.Fatalf("error message %q lacks operation", err)
			}
		})
	}
}

func TestCalibrate_InvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero standard", WithStandard(0)},
		{"negative standard", WithStandard(-1)},
		{"nan standard", WithStandard(math.NaN())},
		{"inf threshold", WithThreshold(math.Inf(1))},
		{"zero threshold", WithThreshold(0)},
		{"negative iterations", WithMaxIterations(-1)},
		{"zero speed", WithInitialSpeed(0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Calibrate(rampUp, cleanDown, tc.opt)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestRelativeToMean_DegenerateMean(t *testing.T) {
	dst := make([]float64, 2)
	if _, err := relativeToMean(dst, []float64{-1, 1}, []float64{-1, 1}); !errors.Is(err, ErrDegenerateReference) {
		t.Fatalf("err = %v, want ErrDegenerateReference", err)
	}
	worst, err := relativeToMean(dst, []float64{1, 3}, []float64{2, 3})
	if err != nil {
		t.Fatalf("relativeToMean error: %v", err)
	}
	testutil.RequireNearlyEqual(t, "worst", worst, 0.5, 1e-15)
	testutil.RequireSliceNearlyEqual(t, dst, []float64{0.5, 0}, 1e-15)
}

func TestResult_DiscardedAndRetention(t *testing.T) {
	res := Result{
		OriginalUp:    make([]float64, 6),
		RetainedIndex: []int{1, 2, 5},
	}
	got := res.Discarded()
	want := []int{0, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Discarded = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Discarded = %v, want %v", got, want)
		}
	}
	testutil.RequireNearlyEqual(t, "retention", res.RetentionRatio(), 0.5, 0)
	if (Result{}).RetentionRatio() != 0 {
		t.Fatal("empty result retention should be 0")
	}
}

func TestCalibrate_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewDefaultLeveledLoggerForScope("calib", logging.LogLevelDebug, &buf)

	up, down := alternatingDown()
	if _, err := Calibrate(up, down, WithLogger(logger)); err != nil {
		t.Fatalf("Calibrate error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "iteration 1:") || !strings.Contains(out, "converged after 6 iterations") {
		t.Fatalf("unexpected log output:\n%s", out)
	}
}

func TestCalibrate_Concurrent(t *testing.T) {
	up := testutil.Ramp(1, 1, 60)
	inputs := make([][]float64, 16)
	want := make([]Result, len(inputs))
	for i := range inputs {
		inputs[i] = testutil.Add(testutil.Linear(up, 1.5, 40), testutil.DeterministicNoise(int64(i+100), 4, len(up)))
		res, err := Calibrate(up, inputs[i])
		if err != nil {
			t.Fatalf("input %d: %v", i, err)
		}
		want[i] = res
	}

	var wg sync.WaitGroup
	errs := make(chan string, len(inputs))
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := Calibrate(up, inputs[i])
			if err != nil {
				errs <- err.Error()
				return
			}
			if res.Slope != want[i].Slope || res.Intercept != want[i].Intercept ||
				len(res.RetainedIndex) != len(want[i].RetainedIndex) {
				errs <- "result differs from sequential run"
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
