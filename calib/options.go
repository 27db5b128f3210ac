package calib

import (
	"fmt"
	"math"

	"github.com/pion/logging"
)

// Config holds the tuning parameters of the calibrator.
type Config struct {
	// Standard divides the down readings before fitting (reference
	// instrument normalisation).
	Standard float64
	// Threshold is the largest tolerated relative error.
	Threshold float64
	// MaxIterations caps the number of refits. Zero keeps the initial fit.
	MaxIterations int
	// InitialSpeed scales the discard limit of the first refit.
	InitialSpeed int
	// Logger receives progress messages. Nil disables logging.
	Logger logging.LeveledLogger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the field defaults.
func DefaultConfig() Config {
	return Config{
		Standard:      1,
		Threshold:     0.03,
		MaxIterations: 100,
		InitialSpeed:  6,
	}
}

// WithStandard sets the down-channel normalisation divisor.
func WithStandard(standard float64) Option {
	return func(cfg *Config) {
		cfg.Standard = standard
	}
}

// WithThreshold sets the convergence threshold.
func WithThreshold(threshold float64) Option {
	return func(cfg *Config) {
		cfg.Threshold = threshold
	}
}

// WithMaxIterations sets the refit budget.
func WithMaxIterations(n int) Option {
	return func(cfg *Config) {
		cfg.MaxIterations = n
	}
}

// WithInitialSpeed sets the discard aggressiveness of the first refit.
func WithInitialSpeed(speed int) Option {
	return func(cfg *Config) {
		cfg.InitialSpeed = speed
	}
}

// WithLogger sets the progress logger.
func WithLogger(logger logging.LeveledLogger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports the first out-of-range parameter.
func (c Config) Validate() error {
	switch {
	case !(c.Standard > 0) || math.IsInf(c.Standard, 0):
		return fmt.Errorf("%w: standard must be positive and finite, got %v", ErrInvalidParameter, c.Standard)
	case !(c.Threshold > 0) || math.IsInf(c.Threshold, 0):
		return fmt.Errorf("%w: threshold must be positive and finite, got %v", ErrInvalidParameter, c.Threshold)
	case c.MaxIterations < 0:
		return fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidParameter, c.MaxIterations)
	case c.InitialSpeed < 1:
		return fmt.Errorf("%w: initial speed must be at least 1, got %d", ErrInvalidParameter, c.InitialSpeed)
	}
	return nil
}
