// Package calib implements robust linear calibration of paired up/down
// radiometric sensor channels.
//
// [Calibrate] fits y = a*x + b to the up (x) and down (y) readings, scores
// every sample by its relative error against the fit, discards the worst
// offenders and refits until the largest relative error is within the
// threshold or the iteration budget is spent.
//
// Aggressiveness is controlled by the speed: a sample is discarded when its
// relative error exceeds speed*threshold. Speed starts at
// [Config.InitialSpeed] and drops by one per iteration down to 1, so early
// rounds remove only gross outliers and later rounds become surgical.
//
// The relative-error reference differs between the first fit (the
// per-sample fitted value) and all later fits (the mean fitted value of the
// working set). This reproduces the field procedure the calibrations were
// historically produced with and directly affects which samples survive.
//
// # Usage
//
//	res, err := calib.Calibrate(up, down, calib.WithThreshold(0.02))
//	if err != nil {
//		return err
//	}
//	if !res.Converged {
//		log.Printf("no convergence after %d iterations", res.IterationsRun)
//	}
//	fmt.Printf("down = %.4f*up %+.4f using %d/%d samples\n",
//		res.Slope, res.Intercept, len(res.RetainedUp), len(res.OriginalUp))
//
// Calibrate keeps no state between calls and is safe for concurrent use.
package calib
