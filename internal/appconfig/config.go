// Package appconfig holds the radcal command-line configuration.
package appconfig

import (
	"strings"
	"unicode/utf8"

	"github.com/pion/logging"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-radcal/calib"
	"github.com/cwbudde/algo-radcal/dataset"
	"github.com/cwbudde/algo-radcal/report"
)

// EnvPrefix prefixes environment overrides, e.g. RADCAL_CALIBRATION_THRESHOLD.
const EnvPrefix = "RADCAL"

// Calibration mirrors calib.Config.
type Calibration struct {
	Standard      float64 `mapstructure:"standard"`
	Threshold     float64 `mapstructure:"threshold"`
	MaxIterations int     `mapstructure:"max_iterations"`
	InitialSpeed  int     `mapstructure:"initial_speed"`
}

// Input describes how logger files are read.
type Input struct {
	Delimiter       string   `mapstructure:"delimiter"`
	HeaderRow       int      `mapstructure:"header_row"`
	TimestampColumn string   `mapstructure:"timestamp_column"`
	TimestampLayout string   `mapstructure:"timestamp_layout"`
	ExcludeColumns  []string `mapstructure:"exclude_columns"`
	DeleteRows      []int    `mapstructure:"delete_rows"`
}

// Output describes where reports go.
type Output struct {
	Dir     string `mapstructure:"dir"`
	Format  string `mapstructure:"format"`
	Station string `mapstructure:"station"`
	Samples bool   `mapstructure:"samples"`
}

// Log selects the log level.
type Log struct {
	Level string `mapstructure:"level"`
}

// Config is the full radcal configuration.
type Config struct {
	Calibration Calibration `mapstructure:"calibration"`
	Input       Input       `mapstructure:"input"`
	Output      Output      `mapstructure:"output"`
	Log         Log         `mapstructure:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	cc := calib.DefaultConfig()
	return Config{
		Calibration: Calibration{
			Standard:      cc.Standard,
			Threshold:     cc.Threshold,
			MaxIterations: cc.MaxIterations,
			InitialSpeed:  cc.InitialSpeed,
		},
		Input: Input{
			Delimiter:       ",",
			HeaderRow:       0,
			TimestampColumn: dataset.DefaultTimestampColumn,
			TimestampLayout: dataset.DefaultTimestampLayout,
			ExcludeColumns:  append([]string(nil), dataset.DefaultExcludedColumns...),
		},
		Output: Output{
			Dir:    ".",
			Format: string(report.FormatYAML),
		},
		Log: Log{Level: "info"},
	}
}

// SetDefaults registers the defaults on v so environment overrides resolve
// for every key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("calibration.standard", d.Calibration.Standard)
	v.SetDefault("calibration.threshold", d.Calibration.Threshold)
	v.SetDefault("calibration.max_iterations", d.Calibration.MaxIterations)
	v.SetDefault("calibration.initial_speed", d.Calibration.InitialSpeed)
	v.SetDefault("input.delimiter", d.Input.Delimiter)
	v.SetDefault("input.header_row", d.Input.HeaderRow)
	v.SetDefault("input.timestamp_column", d.Input.TimestampColumn)
	v.SetDefault("input.timestamp_layout", d.Input.TimestampLayout)
	v.SetDefault("input.exclude_columns", d.Input.ExcludeColumns)
	v.SetDefault("input.delete_rows", []int{})
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.station", d.Output.Station)
	v.SetDefault("output.samples", d.Output.Samples)
	v.SetDefault("log.level", d.Log.Level)
}

// Load reads the configuration. An explicit path must exist; without one
// radcal.yaml is looked up in the working directory and may be absent.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("radcal")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "reading config")
		}
	}

	return Unmarshal(v)
}

// Unmarshal decodes and checks the configuration held by v.
func Unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Check validates the configuration.
func (c Config) Check() error {
	if err := c.CalibConfig(nil).Validate(); err != nil {
		return errors.Wrap(err, "calibration")
	}
	if _, err := c.Input.DelimiterRune(); err != nil {
		return err
	}
	if c.Input.HeaderRow < 0 {
		return errors.Errorf("input.header_row must be >= 0, got %d", c.Input.HeaderRow)
	}
	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		return errors.Wrap(err, "output.format")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// CalibConfig converts the calibration section, attaching logger.
func (c Config) CalibConfig(logger logging.LeveledLogger) calib.Config {
	return calib.Config{
		Standard:      c.Calibration.Standard,
		Threshold:     c.Calibration.Threshold,
		MaxIterations: c.Calibration.MaxIterations,
		InitialSpeed:  c.Calibration.InitialSpeed,
		Logger:        logger,
	}
}

// DelimiterRune returns the single delimiter character. "\t" and "tab"
// select a tab.
func (in Input) DelimiterRune() (rune, error) {
	switch in.Delimiter {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(in.Delimiter) != 1 {
		return 0, errors.Errorf("input.delimiter must be one character, got %q", in.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(in.Delimiter)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, errors.Errorf("input.delimiter %q not allowed", in.Delimiter)
	}
	return r, nil
}

// ReadOptions returns the dataset options for this input section.
func (in Input) ReadOptions() []dataset.ReadOption {
	d, _ := in.DelimiterRune()
	return []dataset.ReadOption{
		dataset.WithDelimiter(d),
		dataset.WithHeaderRow(in.HeaderRow),
		dataset.WithTimestamp(in.TimestampColumn, in.TimestampLayout),
	}
}

// ParseLevel maps a level name to a pion log level.
func ParseLevel(s string) (logging.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "off", "none":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "", "info":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	}
	return logging.LogLevelDisabled, errors.Errorf("unknown log level %q", s)
}
