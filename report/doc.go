// Package report serialises calibration results for archiving and for
// external plotting tools.
//
// A Calibration is a flat, encoder-friendly snapshot of one calibrated
// channel pair: the configuration it ran with, the fitted line, the step
// history and the residual diagnostics. Encode writes it as YAML or JSON;
// WriteRetained and WriteSamples export the per-sample data as CSV.
package report
