package diagnostics

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-radcal/calib"
	"github.com/cwbudde/algo-radcal/fit"
)

// DefaultMaxLag is the number of autocorrelation lags reported by default.
const DefaultMaxLag = 10

// Report describes the residuals of a calibration result.
type Report struct {
	Residuals []float64 // RetainedDown - Fitted, in acquisition order
	Summary   Summary
	Quality   fit.Quality

	// Autocorrelation is nil when the residuals are exactly constant.
	Autocorrelation []float64
	DurbinWatson    float64
	// SerialCorrelation is set when |acf[1]| exceeds the approximate 95%
	// white-noise bound 1.96/sqrt(n).
	SerialCorrelation bool
	// Exact is set when the residuals have zero variance.
	Exact bool
}

// Analyze computes the residual report of res.
func Analyze(res calib.Result, maxLag int) (Report, error) {
	if len(res.RetainedUp) == 0 {
		return Report{}, ErrEmptyInput
	}

	line := fit.Line{Slope: res.Slope, Intercept: res.Intercept}
	resid := fit.Residuals(nil, line, res.RetainedUp, res.RetainedDown)

	q, err := fit.Assess(line, res.RetainedUp, res.RetainedDown)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		Residuals: resid,
		Summary:   Summarize(resid),
		Quality:   q,
	}

	acf, err := Autocorrelation(resid, maxLag)
	switch {
	case errors.Is(err, ErrZeroVariance):
		rep.Exact = true
		return rep, nil
	case err != nil:
		return Report{}, err
	}
	rep.Autocorrelation = acf

	dw, err := DurbinWatson(resid)
	switch {
	case errors.Is(err, ErrZeroVariance):
		rep.Exact = true
		return rep, nil
	case err != nil:
		return Report{}, err
	}
	rep.DurbinWatson = dw

	if len(acf) > 1 {
		rep.SerialCorrelation = math.Abs(acf[1]) > 1.96/math.Sqrt(float64(len(resid)))
	}

	return rep, nil
}
