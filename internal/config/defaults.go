package config

const (
	defaultLogDir       = "~/.local/share/vidsync/logs"
	defaultCacheDir     = "~/.cache/vidsync"
	defaultStoreFile    = "signatures.db"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultFFmpegBinary = "ffmpeg"
	defaultFFprobe      = "ffprobe"

	defaultFrameCacheSize     = 100
	defaultStepwiseIntervalMS = 1000
	defaultMaxOffsetMS        = 15000
	defaultCoarseStepMS       = 1000
	defaultFineStepMS         = 25
	defaultFineWindowMS       = 750
	defaultPreloadStepMS      = 500
	defaultReferenceStartMS   = 2000
	defaultReferenceEndMS     = 20000
	defaultRefineMinScore     = 0.4

	defaultOverallMin   = 0.85
	defaultSampleMin    = 0.75
	defaultHighSample   = 0.90
	defaultHighFraction = 0.70
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobe,
		},
		Engine: Engine{
			FrameCacheSize:     defaultFrameCacheSize,
			StepwiseIntervalMS: defaultStepwiseIntervalMS,
			MaxOffsetMS:        defaultMaxOffsetMS,
			CoarseStepMS:       defaultCoarseStepMS,
			FineStepMS:         defaultFineStepMS,
			FineWindowMS:       defaultFineWindowMS,
			PreloadStepMS:      defaultPreloadStepMS,
			ReferenceStartMS:   defaultReferenceStartMS,
			ReferenceEndMS:     defaultReferenceEndMS,
			RefineMinScore:     defaultRefineMinScore,
		},
		Verdict: Verdict{
			OverallMin:   defaultOverallMin,
			SampleMin:    defaultSampleMin,
			HighSample:   defaultHighSample,
			HighFraction: defaultHighFraction,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
