package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"vidsync/internal/framecache"
	"vidsync/internal/logging"
	"vidsync/internal/signature"
	"vidsync/internal/similarity"
)

type stepwiseRun struct {
	generation uint64
	logger     *slog.Logger
	pathA      string
	pathB      string
	window     Window
	timestamps []int64
	results    []FrameResult
}

// StartStepwise walks the overlap window one frame pair per step at the
// configured interval, emitting FrameCompared for each pair and
// StepwiseComplete at the end.
func (s *Session) StartStepwise() error {
	s.mu.Lock()
	window := s.overlapLocked()
	if s.settingsErr == nil && s.state == StateIdle && !s.videos[SlotA].Empty() && !s.videos[SlotB].Empty() && window.Empty() {
		s.mu.Unlock()
		return ErrNoOverlap
	}
	generation, logger, err := s.beginLocked(StateComparing)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	run := &stepwiseRun{
		generation: generation,
		logger:     logger,
		pathA:      s.videos[SlotA].Path,
		pathB:      s.videos[SlotB].Path,
		window:     window,
	}
	for ts := int64(0); ts < window.DurationMS(); ts += s.settings.StepwiseIntervalMS {
		run.timestamps = append(run.timestamps, ts)
	}
	s.stepwise = run
	s.mu.Unlock()

	logger.Info("stepwise comparison started",
		logging.Int("frames", len(run.timestamps)),
		logging.Int64("overlap_ms", window.DurationMS()))
	s.scheduler.Schedule(s.stepwiseStep(run))
	return nil
}

func (s *Session) stepwiseStep(run *stepwiseRun) func(context.Context) {
	return func(ctx context.Context) {
		s.mu.Lock()
		if !s.activeLocked(run.generation) {
			s.mu.Unlock()
			return
		}
		index := len(run.results)
		s.mu.Unlock()

		rel := run.timestamps[index]
		tsA, tsB := run.window.Map(rel)
		score := similarity.Score(
			s.cachedSignature(ctx, run.pathA, tsA),
			s.cachedSignature(ctx, run.pathB, tsB),
		)
		result := FrameResult{
			TimestampMS: rel,
			TimestampA:  tsA,
			TimestampB:  tsB,
			Similarity:  score,
			Description: fmt.Sprintf("Similarity: %.2f%%", score*100),
		}

		s.mu.Lock()
		if !s.activeLocked(run.generation) {
			s.mu.Unlock()
			return
		}
		run.results = append(run.results, result)
		done := len(run.results) >= len(run.timestamps)
		percent := len(run.results) * 100 / len(run.timestamps)
		var final []FrameResult
		if done {
			final = slices.Clone(run.results)
			s.finishLocked()
		}
		s.mu.Unlock()

		if s.hooks.FrameCompared != nil {
			s.hooks.FrameCompared(result)
		}
		s.emitProgress(run.logger, OpStepwise, percent)
		if !done {
			s.scheduler.Schedule(s.stepwiseStep(run))
			return
		}
		hits, misses := s.cache.Stats()
		run.logger.Info("stepwise comparison complete",
			logging.Int("frames", len(final)),
			logging.Uint64("cache_hits", hits),
			logging.Uint64("cache_misses", misses))
		if s.hooks.StepwiseComplete != nil {
			s.hooks.StepwiseComplete(final)
		}
	}
}

func (s *Session) cachedSignature(ctx context.Context, path string, timestampMS int64) signature.Signature {
	key := framecache.Key{Path: path, TimestampMS: timestampMS}
	if sig, ok := s.cache.Get(key); ok {
		return sig
	}
	sig := s.signer.Signature(ctx, path, timestampMS)
	s.cache.Put(key, sig)
	return sig
}
