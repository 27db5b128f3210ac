package calib

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Standard != 1 || cfg.Threshold != 0.03 || cfg.MaxIterations != 100 || cfg.InitialSpeed != 6 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Logger != nil {
		t.Fatal("default logger should be nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := ApplyOptions(
		WithStandard(2.5),
		WithThreshold(0.01),
		nil,
		WithMaxIterations(7),
		WithInitialSpeed(3),
	)
	if cfg.Standard != 2.5 || cfg.Threshold != 0.01 || cfg.MaxIterations != 7 || cfg.InitialSpeed != 3 {
		t.Fatalf("options not applied: %+v", cfg)
	}
}
