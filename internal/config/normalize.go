package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeEngine()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Store.Path) != "" {
		if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
			return fmt.Errorf("store.path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
}

// normalizeEngine fills zero values so a partial [engine] table keeps the
// remaining defaults.
func (c *Config) normalizeEngine() {
	e := &c.Engine
	if e.FrameCacheSize == 0 {
		e.FrameCacheSize = defaultFrameCacheSize
	}
	if e.StepwiseIntervalMS == 0 {
		e.StepwiseIntervalMS = defaultStepwiseIntervalMS
	}
	if e.MaxOffsetMS == 0 {
		e.MaxOffsetMS = defaultMaxOffsetMS
	}
	if e.CoarseStepMS == 0 {
		e.CoarseStepMS = defaultCoarseStepMS
	}
	if e.FineStepMS == 0 {
		e.FineStepMS = defaultFineStepMS
	}
	if e.FineWindowMS == 0 {
		e.FineWindowMS = defaultFineWindowMS
	}
	if e.PreloadStepMS == 0 {
		e.PreloadStepMS = defaultPreloadStepMS
	}
	if e.ReferenceEndMS == 0 {
		e.ReferenceEndMS = defaultReferenceEndMS
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
