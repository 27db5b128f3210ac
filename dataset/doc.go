// Package dataset reads logger exports and extracts paired up/down channel
// readings for calibration.
//
// Campbell Scientific TOA5 files are detected by their first field and read
// with their four-line preamble (file info, column names, units, processing).
// Other delimited files are read with a single header row.
package dataset
