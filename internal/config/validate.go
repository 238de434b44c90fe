package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateVerdict(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngine() error {
	e := c.Engine
	if e.FrameCacheSize < 1 {
		return errors.New("engine.frame_cache_size must be positive")
	}
	if e.StepwiseIntervalMS < 1 {
		return errors.New("engine.stepwise_interval_ms must be positive")
	}
	if e.PreloadStepMS < 1 {
		return errors.New("engine.preload_step_ms must be positive")
	}
	if e.CoarseStepMS < 1 || e.FineStepMS < 1 {
		return errors.New("engine.coarse_step_ms and engine.fine_step_ms must be positive")
	}
	if e.FineStepMS > e.CoarseStepMS {
		return fmt.Errorf("engine.fine_step_ms (%d) must not exceed engine.coarse_step_ms (%d)", e.FineStepMS, e.CoarseStepMS)
	}
	if e.MaxOffsetMS < e.CoarseStepMS {
		return fmt.Errorf("engine.max_offset_ms (%d) must be at least engine.coarse_step_ms (%d)", e.MaxOffsetMS, e.CoarseStepMS)
	}
	if e.FineWindowMS < 0 {
		return errors.New("engine.fine_window_ms must not be negative")
	}
	if e.ReferenceStartMS < 0 || e.ReferenceEndMS <= e.ReferenceStartMS {
		return errors.New("engine.reference_end_ms must be greater than a non-negative engine.reference_start_ms")
	}
	if e.RefineMinScore < 0 || e.RefineMinScore > 1 {
		return errors.New("engine.refine_min_score must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateVerdict() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"verdict.overall_min", c.Verdict.OverallMin},
		{"verdict.sample_min", c.Verdict.SampleMin},
		{"verdict.high_sample", c.Verdict.HighSample},
		{"verdict.high_fraction", c.Verdict.HighFraction},
	}
	for _, check := range checks {
		if check.value < 0 || check.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", check.name)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
