package report

import (
	"time"

	"github.com/cwbudde/algo-radcal/calib"
	"github.com/cwbudde/algo-radcal/dataset"
	"github.com/cwbudde/algo-radcal/diagnostics"
)

// Parameters mirrors calib.Config without the logger.
type Parameters struct {
	Standard      float64 `yaml:"standard" json:"standard"`
	Threshold     float64 `yaml:"threshold" json:"threshold"`
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
	InitialSpeed  int     `yaml:"initial_speed" json:"initial_speed"`
}

// Step is the serialised form of calib.Step.
type Step struct {
	Iteration        int     `yaml:"iteration" json:"iteration"`
	Speed            int     `yaml:"speed" json:"speed"`
	DiscardLimit     float64 `yaml:"discard_limit" json:"discard_limit"`
	Discarded        []int   `yaml:"discarded,flow" json:"discarded"`
	Retained         int     `yaml:"retained" json:"retained"`
	Slope            float64 `yaml:"slope" json:"slope"`
	Intercept        float64 `yaml:"intercept" json:"intercept"`
	MaxRelativeError float64 `yaml:"max_relative_error" json:"max_relative_error"`
}

// Residuals summarises diagnostics.Report.
type Residuals struct {
	RMSE              float64   `yaml:"rmse" json:"rmse"`
	R2                float64   `yaml:"r2" json:"r2"`
	Mean              float64   `yaml:"mean" json:"mean"`
	StdDev            float64   `yaml:"std_dev" json:"std_dev"`
	Peak              float64   `yaml:"peak" json:"peak"`
	DurbinWatson      float64   `yaml:"durbin_watson" json:"durbin_watson"`
	Autocorrelation   []float64 `yaml:"autocorrelation,flow" json:"autocorrelation"`
	SerialCorrelation bool      `yaml:"serial_correlation" json:"serial_correlation"`
	Exact             bool      `yaml:"exact" json:"exact"`
}

// Calibration is the archived record of one channel pair.
type Calibration struct {
	Station    string    `yaml:"station,omitempty" json:"station,omitempty"`
	Source     string    `yaml:"source,omitempty" json:"source,omitempty"`
	Created    time.Time `yaml:"created" json:"created"`
	Pair       string    `yaml:"pair" json:"pair"`
	Up         string    `yaml:"up" json:"up"`
	Down       string    `yaml:"down" json:"down"`
	Wavelength int       `yaml:"wavelength_nm,omitempty" json:"wavelength_nm,omitempty"`

	Parameters Parameters `yaml:"parameters" json:"parameters"`

	Slope            float64 `yaml:"slope" json:"slope"`
	Intercept        float64 `yaml:"intercept" json:"intercept"`
	Converged        bool    `yaml:"converged" json:"converged"`
	Iterations       int     `yaml:"iterations" json:"iterations"`
	MaxRelativeError float64 `yaml:"max_relative_error" json:"max_relative_error"`
	Samples          int     `yaml:"samples" json:"samples"`
	Retained         int     `yaml:"retained" json:"retained"`
	Discarded        []int   `yaml:"discarded,flow" json:"discarded"`

	Steps     []Step     `yaml:"steps" json:"steps"`
	Residuals *Residuals `yaml:"residuals,omitempty" json:"residuals,omitempty"`
}

// FromResult builds the archive record of res. diag may be nil.
func FromResult(pair dataset.ChannelPair, cfg calib.Config, res calib.Result, diag *diagnostics.Report) Calibration {
	cal := Calibration{
		Pair:       pair.Name(),
		Up:         pair.Up,
		Down:       pair.Down,
		Wavelength: pair.WavelengthNM,
		Parameters: Parameters{
			Standard:      cfg.Standard,
			Threshold:     cfg.Threshold,
			MaxIterations: cfg.MaxIterations,
			InitialSpeed:  cfg.InitialSpeed,
		},
		Slope:            res.Slope,
		Intercept:        res.Intercept,
		Converged:        res.Converged,
		Iterations:       res.IterationsRun,
		MaxRelativeError: res.MaxRelativeError,
		Samples:          len(res.OriginalUp),
		Retained:         len(res.RetainedIndex),
		Discarded:        res.Discarded(),
		Steps:            make([]Step, len(res.Steps)),
	}

	for i, s := range res.Steps {
		cal.Steps[i] = Step{
			Iteration:        s.Iteration,
			Speed:            s.Speed,
			DiscardLimit:     s.DiscardLimit,
			Discarded:        append([]int{}, s.Discarded...),
			Retained:         s.Retained,
			Slope:            s.Slope,
			Intercept:        s.Intercept,
			MaxRelativeError: s.MaxRelativeError,
		}
	}

	if diag != nil {
		cal.Residuals = &Residuals{
			RMSE:              diag.Quality.RMSE,
			R2:                diag.Quality.R2,
			Mean:              diag.Summary.Mean,
			StdDev:            diag.Summary.StdDev,
			Peak:              diag.Summary.Peak,
			DurbinWatson:      diag.DurbinWatson,
			Autocorrelation:   diag.Autocorrelation,
			SerialCorrelation: diag.SerialCorrelation,
			Exact:             diag.Exact,
		}
	}

	return cal
}
