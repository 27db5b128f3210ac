// Package fit provides ordinary least-squares line fitting for paired
// sensor readings.
//
// The model is y = Slope*x + Intercept. [FitLine] centres the x values and
// solves the resulting two-column system with a QR factorisation, which
// keeps the intercept accurate when the readings sit far from the origin
// (typical for logger voltages with a large offset).
//
// # Usage
//
//	line, err := fit.FitLine(up, down)
//	if err != nil {
//		return err
//	}
//	q, _ := fit.Assess(line, up, down)
//	fmt.Printf("y = %.4f*x + %.4f (R2 %.4f)\n", line.Slope, line.Intercept, q.R2)
package fit
