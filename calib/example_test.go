package calib_test

import (
	"fmt"

	"github.com/cwbudde/algo-radcal/calib"
)

func ExampleCalibrate() {
	up := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	down := []float64{20.1, 21.9, 24.1, 50, 28.1, 29.9, 32.1, 33.9, 36.1, 37.9}

	res, err := calib.Calibrate(up, down)
	if err != nil {
		panic(err)
	}
	fmt.Printf("converged=%v iterations=%d retained=%d discarded=%v\n",
		res.Converged, res.IterationsRun, len(res.RetainedUp), res.Discarded())
	fmt.Printf("slope=%.3f intercept=%.3f\n", res.Slope, res.Intercept)

	// Output:
	// converged=true iterations=1 retained=9 discarded=[3]
	// slope=1.992 intercept=0.133
}
