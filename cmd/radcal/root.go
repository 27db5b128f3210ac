package main

import (
	"fmt"
	"os"

	"github.com/pion/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-radcal/internal/appconfig"
)

var (
	configPath string
	v          = viper.New()
	cfg        = appconfig.Default()
	logs       logging.LoggerFactory
)

var rootCmd = &cobra.Command{
	Use:   "radcal",
	Short: "Robust linear calibration of up/down radiometer channels",
	Long: `radcal fits a line through the readings of an up-looking and a
down-looking radiometer channel, discarding the samples that deviate most
from the fit until the remaining ones agree within the threshold.

Logger files in Campbell TOA5 format are recognised automatically; other
delimited files need a header row.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./radcal.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: error, warn, info, debug, trace, disabled")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := appconfig.Load(v, configPath)
	if err != nil {
		return err
	}
	cfg = c
	logs, err = newLoggerFactory(cfg.Log.Level, cmd)
	return err
}

// reloadConfig decodes v again after flag overrides were applied.
func reloadConfig() error {
	c, err := appconfig.Unmarshal(v)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

func newLoggerFactory(level string, cmd *cobra.Command) (logging.LoggerFactory, error) {
	lvl, err := appconfig.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	f := logging.NewDefaultLoggerFactory()
	f.DefaultLogLevel = lvl
	f.Writer = cmd.ErrOrStderr()
	return f, nil
}
