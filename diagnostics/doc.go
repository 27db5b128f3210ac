// Package diagnostics inspects the residuals of a calibration.
//
// A calibration can converge and still be suspect: residuals that drift with
// time (sensor warm-up, changing sky conditions during the run) show up as
// serial correlation rather than as large relative errors. [Analyze]
// reports residual moments, the normalised autocorrelation function and the
// Durbin–Watson statistic of the retained samples, in acquisition order.
//
// # Usage
//
//	res, _ := calib.Calibrate(up, down)
//	rep, err := diagnostics.Analyze(res, diagnostics.DefaultMaxLag)
//	if err == nil && rep.SerialCorrelation {
//		log.Printf("residual lag-1 autocorrelation %.2f", rep.Autocorrelation[1])
//	}
package diagnostics
