package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-radcal/report"
)

var pairsExport string

var pairsCmd = &cobra.Command{
	Use:   "pairs FILE",
	Short: "List the up/down channel pairs found in a logger file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPipeline(cfg, logs, nil)
		tbl, err := p.load(args[0])
		if err != nil {
			return err
		}
		pairs, unmatched := p.selectPairs(tbl)

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%d rows, %d pairs\n", tbl.Len(), len(pairs))
		for _, pr := range pairs {
			fmt.Fprintf(w, "  %-10s %-14s %s\n", pr.Name(), pr.Up, pr.Down)
		}
		if len(unmatched) > 0 {
			fmt.Fprintf(w, "unmatched: %v\n", unmatched)
		}

		if pairsExport == "" {
			return nil
		}
		return writeFile(pairsExport, func(f *os.File) error {
			return errors.Wrap(report.WritePairs(f, pairs), "exporting pairs")
		})
	},
}

func init() {
	rootCmd.AddCommand(pairsCmd)
	pairsCmd.Flags().StringVarP(&pairsExport, "export", "e", "", "write the pair configuration as CSV")
}
