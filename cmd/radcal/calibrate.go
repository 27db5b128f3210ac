package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var calibratePairs []string

var calibrateCmd = &cobra.Command{
	Use:   "calibrate FILE",
	Short: "Calibrate every up/down channel pair of a logger file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := newPipeline(cfg, logs, calibratePairs).run(args[0])
		if err != nil {
			return err
		}
		printOutcomes(cmd.OutOrStdout(), out)
		return failures(out)
	},
}

func init() {
	rootCmd.AddCommand(calibrateCmd)
	addCalibrationFlags(calibrateCmd, &calibratePairs)
}

// addCalibrationFlags declares the flags shared by calibrate and watch.
func addCalibrationFlags(cmd *cobra.Command, pairs *[]string) {
	flags := cmd.Flags()
	flags.StringSliceVarP(pairs, "pair", "p", nil, "calibrate only these pairs (suffix or column name)")
	flags.Float64("standard", 0, "divisor applied to the down channel")
	flags.Float64("threshold", 0, "largest tolerated relative error")
	flags.Int("max-iterations", 0, "refit budget")
	flags.Int("initial-speed", 0, "discard aggressiveness of the first refit")
	flags.StringP("out", "o", "", "output directory")
	flags.StringP("format", "f", "", "report format: yaml or json")
	flags.String("station", "", "station name used in output file names")
	flags.Bool("samples", false, "also write every input sample with its fitted value")
	bindFlags(cmd)
}

// bindFlags maps command flags onto config keys. Flags only override the
// config when set on the command line.
func bindFlags(cmd *cobra.Command) {
	keys := map[string]string{
		"standard":       "calibration.standard",
		"threshold":      "calibration.threshold",
		"max-iterations": "calibration.max_iterations",
		"initial-speed":  "calibration.initial_speed",
		"out":            "output.dir",
		"format":         "output.format",
		"station":        "output.station",
		"samples":        "output.samples",
	}
	prev := cmd.PreRunE
	cmd.PreRunE = func(c *cobra.Command, args []string) error {
		for flag, key := range keys {
			if f := c.Flags().Lookup(flag); f != nil && f.Changed {
				v.Set(key, f.Value.String())
			}
		}
		if err := reloadConfig(); err != nil {
			return err
		}
		if prev != nil {
			return prev(c, args)
		}
		return nil
	}
}

func printOutcomes(w io.Writer, out []outcome) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAIR\tSLOPE\tINTERCEPT\tRETAINED\tITER\tCONVERGED\tMAX ERR\tREPORT")
	for _, oc := range out {
		if oc.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t-\t%v\n", oc.Pair.Name(), oc.Err)
			continue
		}
		r := oc.Result
		report := "-"
		if len(oc.Files) > 1 {
			report = oc.Files[1]
		}
		fmt.Fprintf(tw, "%s\t%.6g\t%.6g\t%d/%d\t%d\t%v\t%.4f\t%s\n",
			oc.Pair.Name(), r.Slope, r.Intercept,
			len(r.RetainedIndex), len(r.OriginalUp),
			r.IterationsRun, r.Converged, r.MaxRelativeError, report)
	}
	tw.Flush()
}

func failures(out []outcome) error {
	n := 0
	for _, oc := range out {
		if oc.Err != nil {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return errors.Errorf("%d of %d pairs failed", n, len(out))
}
