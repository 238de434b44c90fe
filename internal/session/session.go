package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"vidsync/internal/framecache"
	"vidsync/internal/logging"
)

// Session is the comparison state machine. It is safe for concurrent use;
// operation steps run on whatever goroutine drives the Scheduler.
type Session struct {
	source    FrameSource
	signer    Signer
	scheduler Scheduler
	cache     *framecache.Cache
	logger    *slog.Logger
	hooks     Hooks
	settings  Settings
	progress  *logging.ProgressSampler

	// settingsErr, when set, rejects every start.
	settingsErr error

	mu         sync.Mutex
	state      State
	videos     [2]VideoRef
	offsets    [2]int64
	generation uint64
	stepwise   *stepwiseRun
	auto       *autoRun
	offset     *offsetRun
}

// Option configures optional Session behavior.
type Option func(*Session)

// WithSigner replaces the default frame-decoding signer.
func WithSigner(signer Signer) Option {
	return func(s *Session) {
		if signer != nil {
			s.signer = signer
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks registers event callbacks.
func WithHooks(hooks Hooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithSettings overrides the engine settings.
func WithSettings(settings Settings) Option {
	return func(s *Session) {
		s.settings = settings
	}
}

// New constructs an idle session reading frames from source and running its
// steps on scheduler.
func New(source FrameSource, scheduler Scheduler, opts ...Option) *Session {
	s := &Session{
		source:    source,
		scheduler: scheduler,
		logger:    logging.NewNop(),
		settings:  DefaultSettings(),
		progress:  logging.NewProgressSampler(5),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "session")
	if s.signer == nil {
		s.signer = NewSourceSigner(source, s.logger)
	}
	if s.settings.StepwiseIntervalMS <= 0 {
		s.settings.StepwiseIntervalMS = DefaultSettings().StepwiseIntervalMS
	}
	if err := s.settings.Validate(); err != nil {
		s.settingsErr = fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		logging.WarnWithContext(s.logger, "session settings rejected", "invalid_settings",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the [engine] and [verdict] configuration"),
			logging.String(logging.FieldImpact, "comparisons cannot start"))
	}
	s.cache = framecache.New(s.settings.FrameCacheSize, s.logger)
	return s
}

// SetVideo registers path in slot, fetching its duration once. An empty path
// clears the slot. Cached frames of the replaced path are dropped unless the
// other slot still refers to it.
func (s *Session) SetVideo(ctx context.Context, slot Slot, path string) error {
	if !slot.valid() {
		return fmt.Errorf("invalid slot %d", slot)
	}
	ref := VideoRef{Path: path}
	if path != "" {
		duration, err := s.source.Duration(ctx, path)
		if err != nil {
			return fmt.Errorf("probe duration of %s: %w", path, err)
		}
		ref.DurationMS = duration
	}

	s.mu.Lock()
	old := s.videos[slot].Path
	s.videos[slot] = ref
	other := s.videos[slot.other()].Path
	s.mu.Unlock()

	if old != "" && old != other {
		s.cache.InvalidatePath(old)
	}
	s.logger.Info("video registered",
		logging.String(logging.FieldSlot, slot.String()),
		logging.String(logging.FieldPath, path),
		logging.Int64("duration_ms", ref.DurationMS))
	return nil
}

// SetOffset sets the offset applied to slot.
func (s *Session) SetOffset(slot Slot, offsetMS int64) {
	if !slot.valid() {
		return
	}
	s.mu.Lock()
	s.offsets[slot] = offsetMS
	s.mu.Unlock()
	s.logger.Debug("offset updated",
		logging.String(logging.FieldSlot, slot.String()),
		logging.Int64(logging.FieldOffset, offsetMS))
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Video returns the video registered in slot.
func (s *Session) Video(slot Slot) VideoRef {
	if !slot.valid() {
		return VideoRef{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videos[slot]
}

// Offset returns the offset applied to slot.
func (s *Session) Offset(slot Slot) int64 {
	if !slot.valid() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offsets[slot]
}

// Overlap returns the shared window under the current offsets.
func (s *Session) Overlap() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlapLocked()
}

// CachedFrames reports the number of signatures held by the frame cache.
func (s *Session) CachedFrames() int {
	return s.cache.Len()
}

// Cancel stops the active operation and returns the session to Idle. Partial
// stepwise and auto results are reported through Hooks.Cancelled. It returns
// false when nothing was running.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return false
	}
	op := s.state.operation()
	var (
		partial []FrameResult
		logger  = s.logger
	)
	switch {
	case s.stepwise != nil:
		partial = slices.Clone(s.stepwise.results)
		logger = s.stepwise.logger
	case s.auto != nil:
		partial = slices.Clone(s.auto.results)
		logger = s.auto.logger
	case s.offset != nil:
		logger = s.offset.logger
	}
	s.finishLocked()
	s.mu.Unlock()

	logger.Info("operation cancelled", logging.Int("partial_results", len(partial)))
	if s.hooks.Cancelled != nil {
		s.hooks.Cancelled(op, partial)
	}
	return true
}

// beginLocked validates a start request and moves to state. The caller holds
// s.mu.
func (s *Session) beginLocked(state State) (uint64, *slog.Logger, error) {
	if s.settingsErr != nil {
		return 0, nil, s.settingsErr
	}
	if s.state != StateIdle {
		return 0, nil, ErrBusy
	}
	if s.videos[SlotA].Empty() || s.videos[SlotB].Empty() {
		return 0, nil, ErrMissingVideo
	}
	s.generation++
	s.state = state
	s.progress.Reset()

	op := state.operation()
	ctx := logging.WithRunID(context.Background(), uuid.NewString())
	ctx = logging.WithOperation(ctx, string(op))
	return s.generation, logging.WithContext(ctx, s.logger), nil
}

// finishLocked returns to Idle and invalidates any in-flight steps.
func (s *Session) finishLocked() {
	s.generation++
	s.state = StateIdle
	s.stepwise = nil
	s.auto = nil
	s.offset = nil
}

// activeLocked reports whether a step scheduled under generation may still
// run.
func (s *Session) activeLocked(generation uint64) bool {
	return s.generation == generation && s.state != StateIdle
}

func (s *Session) overlapLocked() Window {
	return Overlap(s.videos[SlotA], s.videos[SlotB], s.offsets[SlotA], s.offsets[SlotB])
}

func (s *Session) emitProgress(logger *slog.Logger, op Operation, percent int) {
	s.mu.Lock()
	shouldLog := s.progress.ShouldLog(percent, string(op))
	s.mu.Unlock()
	if shouldLog {
		logger.Debug("progress", logging.Int("percent", percent))
	}
	if s.hooks.Progress != nil {
		s.hooks.Progress(op, percent)
	}
}
