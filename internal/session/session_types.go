package session

import (
	"context"
	"errors"
	"fmt"
	"image"

	"vidsync/internal/config"
	"vidsync/internal/offsetsearch"
	"vidsync/internal/signature"
)

var (
	// ErrMissingVideo rejects a start while a slot is empty.
	ErrMissingVideo = errors.New("both video slots must be set")
	// ErrBusy rejects a start while another operation is active.
	ErrBusy = errors.New("another comparison is in progress")
	// ErrNoOverlap rejects a stepwise comparison when the offsets leave no
	// shared duration.
	ErrNoOverlap = errors.New("videos do not overlap with the current offsets")
	// ErrInvalidSettings rejects every start on a session built with unusable
	// engine settings.
	ErrInvalidSettings = errors.New("invalid engine settings")
)

// Slot selects one of the two compared videos.
type Slot int

const (
	SlotA Slot = iota
	SlotB
)

func (s Slot) String() string {
	if s == SlotB {
		return "B"
	}
	return "A"
}

func (s Slot) other() Slot {
	if s == SlotA {
		return SlotB
	}
	return SlotA
}

func (s Slot) valid() bool {
	return s == SlotA || s == SlotB
}

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateComparing
	StateAutoComparing
	StateDetectingOffset
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComparing:
		return "comparing"
	case StateAutoComparing:
		return "auto_comparing"
	case StateDetectingOffset:
		return "detecting_offset"
	default:
		return "unknown"
	}
}

// Operation names a long-running session operation.
type Operation string

const (
	OpStepwise Operation = "stepwise"
	OpAuto     Operation = "auto"
	OpOffset   Operation = "offset"
)

func (s State) operation() Operation {
	switch s {
	case StateComparing:
		return OpStepwise
	case StateAutoComparing:
		return OpAuto
	case StateDetectingOffset:
		return OpOffset
	default:
		return ""
	}
}

// VideoRef is a registered video. Duration is fetched once at registration.
type VideoRef struct {
	Path       string
	DurationMS int64
}

// Empty reports whether the slot holds no video.
func (v VideoRef) Empty() bool {
	return v.Path == ""
}

// FrameSource decodes frames and reports durations.
type FrameSource interface {
	Duration(ctx context.Context, path string) (int64, error)
	Frame(ctx context.Context, path string, timestampMS int64) (image.Image, error)
}

// Signer produces the signature of one frame. Failures yield an absent
// signature.
type Signer interface {
	Signature(ctx context.Context, path string, timestampMS int64) signature.Signature
}

// Scheduler runs steps one at a time, in order, some time after Schedule
// returns.
type Scheduler interface {
	Schedule(step func(context.Context))
}

// FrameResult is one compared frame pair. TimestampMS is relative to the
// start of the overlap window.
type FrameResult struct {
	TimestampMS int64
	TimestampA  int64
	TimestampB  int64
	Similarity  float64
	Description string
}

// AutoResult is the verdict of a full comparison.
type AutoResult struct {
	Overall   float64
	Identical bool
	Summary   string
	Samples   []FrameResult
}

// OffsetResult is the outcome of offset discovery. Applying OffsetMS to slot
// B (with A at zero) aligns the videos.
type OffsetResult struct {
	OffsetMS   int64
	Confidence float64
	Score      float64
	Candidates int
	Refined    bool
}

// Hooks receives session events. Nil callbacks are skipped.
type Hooks struct {
	Progress         func(op Operation, percent int)
	FrameCompared    func(result FrameResult)
	StepwiseComplete func(results []FrameResult)
	AutoComplete     func(result AutoResult)
	OffsetDetected   func(result OffsetResult)
	Cancelled        func(op Operation, partial []FrameResult)
}

// Settings tunes the comparison engine.
type Settings struct {
	FrameCacheSize     int
	StepwiseIntervalMS int64
	Search             offsetsearch.Params
	Verdict            VerdictThresholds
}

// Validate reports settings that would stall or break an operation.
func (s Settings) Validate() error {
	var errs []error
	if s.StepwiseIntervalMS <= 0 {
		errs = append(errs, fmt.Errorf("stepwise interval must be positive, got %d", s.StepwiseIntervalMS))
	}
	if err := s.Search.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("offset search: %w", err))
	}
	if err := s.Verdict.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("verdict: %w", err))
	}
	return errors.Join(errs...)
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return SettingsFromConfig(nil)
}

// SettingsFromConfig extracts engine settings from cfg; nil yields defaults.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	e := cfg.Engine
	v := cfg.Verdict
	return Settings{
		FrameCacheSize:     e.FrameCacheSize,
		StepwiseIntervalMS: e.StepwiseIntervalMS,
		Search: offsetsearch.Params{
			MaxOffsetMS:      e.MaxOffsetMS,
			CoarseStepMS:     e.CoarseStepMS,
			FineStepMS:       e.FineStepMS,
			FineWindowMS:     e.FineWindowMS,
			PreloadStepMS:    e.PreloadStepMS,
			ReferenceStartMS: e.ReferenceStartMS,
			ReferenceEndMS:   e.ReferenceEndMS,
			RefineMinScore:   e.RefineMinScore,
		},
		Verdict: VerdictThresholds{
			OverallMin:   v.OverallMin,
			SampleMin:    v.SampleMin,
			HighSample:   v.HighSample,
			HighFraction: v.HighFraction,
		},
	}
}
