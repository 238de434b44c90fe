package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"vidsync/internal/config"
	"vidsync/internal/deps"
	"vidsync/internal/framesource"
	"vidsync/internal/logging"
	"vidsync/internal/preflight"
	"vidsync/internal/session"
	"vidsync/internal/sigstore"
)

// runner owns one session driven by a local loop and collects its events.
type runner struct {
	logger   *slog.Logger
	store    *sigstore.Store
	loop     *session.Loop
	session  *session.Session
	progress *progressLine

	mu        sync.Mutex
	stepwise  []session.FrameResult
	auto      *session.AutoResult
	offset    *session.OffsetResult
	cancelled bool
	partial   []session.FrameResult
}

type runnerOptions struct {
	pathA   string
	pathB   string
	offsetA int64
	offsetB int64
}

func (c *commandContext) newRunner(ctx context.Context, stderr io.Writer, opts runnerOptions) (*runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	if missing := deps.Missing(preflight.CheckSystemDeps(ctx, cfg)); len(missing) > 0 {
		return nil, missingDepsError(missing)
	}

	r := &runner{
		logger:   logger,
		loop:     session.NewLoop(),
		progress: newProgressLine(stderr),
	}

	source := framesource.NewFromConfig(cfg, logger)
	var signer session.Signer = session.NewSourceSigner(source, logger)
	if cfg.Store.Enabled {
		store, err := openStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		if store != nil {
			r.store = store
			signer = store.Wrap(signer)
		}
	}

	r.session = session.New(source, r.loop,
		session.WithSigner(signer),
		session.WithLogger(logger),
		session.WithSettings(session.SettingsFromConfig(cfg)),
		session.WithHooks(r.hooks()),
	)

	if err := r.session.SetVideo(ctx, session.SlotA, opts.pathA); err != nil {
		r.close()
		return nil, fmt.Errorf("video A: %w", err)
	}
	if err := r.session.SetVideo(ctx, session.SlotB, opts.pathB); err != nil {
		r.close()
		return nil, fmt.Errorf("video B: %w", err)
	}
	r.session.SetOffset(session.SlotA, opts.offsetA)
	r.session.SetOffset(session.SlotB, opts.offsetB)
	return r, nil
}

// openStore returns nil without error when another process holds the store.
func openStore(cfg *config.Config, logger *slog.Logger) (*sigstore.Store, error) {
	store, err := sigstore.Open(cfg.StorePath(), logger)
	if errors.Is(err, sigstore.ErrLocked) {
		logging.WarnWithContext(logger, "signature store busy; continuing without persistence", "store_locked",
			logging.String(logging.FieldPath, cfg.StorePath()),
			logging.String(logging.FieldImpact, "signatures are recomputed"),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open signature store: %w", err)
	}
	return store, nil
}

func missingDepsError(missing []deps.Status) error {
	parts := make([]string, 0, len(missing))
	for _, m := range missing {
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Name, m.Detail))
	}
	return fmt.Errorf("missing dependencies: %s", strings.Join(parts, ", "))
}

func (r *runner) hooks() session.Hooks {
	return session.Hooks{
		Progress: func(op session.Operation, percent int) {
			r.progress.update(op, percent)
		},
		StepwiseComplete: func(results []session.FrameResult) {
			r.mu.Lock()
			r.stepwise = results
			r.mu.Unlock()
		},
		AutoComplete: func(result session.AutoResult) {
			r.mu.Lock()
			r.auto = &result
			r.mu.Unlock()
		},
		OffsetDetected: func(result session.OffsetResult) {
			r.mu.Lock()
			r.offset = &result
			r.mu.Unlock()
		},
		Cancelled: func(_ session.Operation, partial []session.FrameResult) {
			r.mu.Lock()
			r.cancelled = true
			r.partial = partial
			r.mu.Unlock()
		},
	}
}

// run starts an operation and drives the loop until it finishes or the user
// interrupts it. Interrupts cancel the session, so the in-flight step is
// discarded rather than torn down.
func (r *runner) run(ctx context.Context, start func() error) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- r.loop.RunUntilIdle(context.WithoutCancel(ctx))
	}()

	var err error
	select {
	case err = <-done:
	case <-sigCtx.Done():
		r.session.Cancel()
		err = <-done
	}
	r.progress.finish()
	r.logger.Debug("session finished", logging.Int("cached_frames", r.session.CachedFrames()))
	return err
}

func (r *runner) wasCancelled() ([]session.FrameResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.partial, r.cancelled
}

func (r *runner) close() {
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.logger.Warn("close signature store failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "store_close_failed"),
		)
	}
}
