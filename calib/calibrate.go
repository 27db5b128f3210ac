package calib

import (
	"fmt"

	"github.com/cwbudde/algo-radcal/fit"
)

// workingSet holds the surviving pairs together with their input indices.
// Removal always applies to all three slices at once.
type workingSet struct {
	x, y  []float64
	index []int
}

func newWorkingSet(x, y []float64) *workingSet {
	ws := &workingSet{
		x:     append([]float64(nil), x...),
		y:     append([]float64(nil), y...),
		index: make([]int, len(x)),
	}
	for i := range ws.index {
		ws.index[i] = i
	}
	return ws
}

func (ws *workingSet) len() int { return len(ws.x) }

// discard removes every pair whose score exceeds limit, compacting in place.
// It returns the input indices of the removed pairs.
func (ws *workingSet) discard(score []float64, limit float64) []int {
	var removed []int
	keep := 0
	for i := range ws.x {
		if score[i] > limit {
			removed = append(removed, ws.index[i])
			continue
		}
		ws.x[keep] = ws.x[i]
		ws.y[keep] = ws.y[i]
		ws.index[keep] = ws.index[i]
		keep++
	}
	ws.x = ws.x[:keep]
	ws.y = ws.y[:keep]
	ws.index = ws.index[:keep]
	return removed
}

// Calibrate runs the fit/discard/refit loop on up (x) and down (y) with the
// default parameters modified by opts.
func Calibrate(up, down []float64, opts ...Option) (Result, error) {
	return CalibrateConfig(up, down, ApplyOptions(opts...))
}

// CalibrateConfig runs the fit/discard/refit loop with an explicit config.
func CalibrateConfig(up, down []float64, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if len(up) != len(down) {
		return Result{}, &Error{
			Op:      "validate",
			Samples: len(up),
			Err:     fmt.Errorf("%w: %d up vs %d down", ErrLengthMismatch, len(up), len(down)),
		}
	}
	if len(up) < 2 {
		return Result{}, &Error{Op: "validate", Samples: len(up), Err: ErrInsufficientData}
	}

	n := len(up)
	original := make([]float64, n)
	for i, v := range down {
		original[i] = v / cfg.Standard
	}
	ws := newWorkingSet(up, original)

	line, err := fit.FitLine(ws.x, ws.y)
	if err != nil {
		return Result{}, &Error{Op: "fit", Samples: n, Err: err}
	}
	fitted := line.EvalInto(nil, ws.x)
	score := make([]float64, n)
	worst, err := relativeToFitted(score, fitted, ws.y)
	if err != nil {
		return Result{}, &Error{Op: "relative error", Samples: n, Err: err}
	}

	var (
		steps []Step
		speed = cfg.InitialSpeed
		iter  int
	)
	for worst > cfg.Threshold && iter < cfg.MaxIterations {
		iteration := iter + 1
		limit := float64(speed) * cfg.Threshold

		removed := ws.discard(score, limit)
		if ws.len() < 2 {
			return Result{}, &Error{Op: "discard", Iteration: iteration, Samples: ws.len(), Err: ErrInsufficientData}
		}

		line, err = fit.FitLine(ws.x, ws.y)
		if err != nil {
			return Result{}, &Error{Op: "fit", Iteration: iteration, Samples: ws.len(), Err: err}
		}
		fitted = line.EvalInto(fitted, ws.x)
		score = score[:ws.len()]
		worst, err = relativeToMean(score, fitted, ws.y)
		if err != nil {
			return Result{}, &Error{Op: "relative error", Iteration: iteration, Samples: ws.len(), Err: err}
		}

		steps = append(steps, Step{
			Iteration:        iteration,
			Speed:            speed,
			DiscardLimit:     limit,
			Discarded:        removed,
			Retained:         ws.len(),
			Slope:            line.Slope,
			Intercept:        line.Intercept,
			MaxRelativeError: worst,
		})
		if cfg.Logger != nil {
			cfg.Logger.Debugf("iteration %d: speed %d discarded %d, %d samples left, max relative error %.4g",
				iteration, speed, len(removed), ws.len(), worst)
		}

		speed = max(speed-1, 1)
		iter = iteration
	}

	res := Result{
		Slope:            line.Slope,
		Intercept:        line.Intercept,
		OriginalUp:       append([]float64(nil), up...),
		OriginalDown:     original,
		RetainedUp:       ws.x,
		RetainedDown:     ws.y,
		RetainedIndex:    ws.index,
		Fitted:           fitted,
		RelativeError:    score,
		MaxRelativeError: worst,
		IterationsRun:    iter,
		Converged:        worst <= cfg.Threshold,
		Steps:            steps,
	}

	if cfg.Logger != nil {
		if res.Converged {
			cfg.Logger.Infof("converged after %d iterations: %s, %d/%d samples retained",
				iter, line, len(ws.x), n)
		} else {
			cfg.Logger.Warnf("no convergence after %d iterations: max relative error %.4g > %.4g",
				iter, worst, cfg.Threshold)
		}
	}

	return res, nil
}
