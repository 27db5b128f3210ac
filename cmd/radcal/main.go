// Command radcal calibrates paired up/down radiometer channels recorded by
// a data logger.
//
// Usage:
//
//	radcal pairs FILE
//	radcal calibrate [flags] FILE
//	radcal watch [flags] FILE
//
// Configuration is read from --config or ./radcal.yaml; every key can be
// overridden with a RADCAL_ environment variable, e.g.
// RADCAL_CALIBRATION_THRESHOLD=0.05.
//
// Examples:
//
//	radcal pairs CR1000_Cal.dat
//	radcal calibrate --pair 630 --threshold 0.02 CR1000_Cal.dat
//	radcal watch --out reports CR1000_Cal.dat
package main

func main() {
	Execute()
}
