package session

import (
	"context"
	"log/slog"

	"vidsync/internal/logging"
	"vidsync/internal/offsetsearch"
	"vidsync/internal/signature"
)

type offsetRun struct {
	generation uint64
	logger     *slog.Logger
	search     *offsetsearch.Search
}

// StartOffsetDetection searches for the offset of B relative to A, one
// preload probe or candidate per step. Current offsets are ignored. When no
// candidate can be scored, no OffsetDetected event fires.
func (s *Session) StartOffsetDetection() error {
	run, err := s.beginOffset()
	if err != nil {
		return err
	}
	params := s.settings.Search
	run.logger.Info("offset detection started",
		logging.Int64("max_offset_ms", params.MaxOffsetMS),
		logging.Int64("coarse_step_ms", params.CoarseStepMS))
	s.scheduler.Schedule(s.offsetStep(run))
	return nil
}

func (s *Session) beginOffset() (*offsetRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	generation, logger, err := s.beginLocked(StateDetectingOffset)
	if err != nil {
		return nil, err
	}
	a, b := s.videos[SlotA], s.videos[SlotB]
	probe := func(path string) offsetsearch.Probe {
		return func(ctx context.Context, ts int64) signature.Signature {
			return s.signer.Signature(ctx, path, ts)
		}
	}
	s.offset = &offsetRun{
		generation: generation,
		logger:     logger,
		search:     offsetsearch.New(s.settings.Search, a.DurationMS, b.DurationMS, probe(a.Path), probe(b.Path)),
	}
	return s.offset, nil
}

func (s *Session) offsetStep(run *offsetRun) func(context.Context) {
	return func(ctx context.Context) {
		s.mu.Lock()
		if !s.activeLocked(run.generation) {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		run.search.Step(ctx)

		s.mu.Lock()
		if !s.activeLocked(run.generation) {
			s.mu.Unlock()
			return
		}
		done := run.search.Done()
		if done {
			s.finishLocked()
		}
		s.mu.Unlock()

		s.emitProgress(run.logger, OpOffset, run.search.Progress())
		if !done {
			s.scheduler.Schedule(s.offsetStep(run))
			return
		}

		found, ok := run.search.Result()
		if !ok {
			logging.WarnWithContext(run.logger, "offset detection found no signal", "offset_no_signal",
				logging.String(logging.FieldErrorHint, "check that both videos decode and share content"),
				logging.String(logging.FieldImpact, "no offset was suggested"))
			return
		}
		result := OffsetResult{
			OffsetMS:   found.OffsetMS,
			Confidence: found.Confidence,
			Score:      found.Score,
			Candidates: found.Candidates,
			Refined:    found.Refined,
		}
		run.logger.Info("offset detected",
			logging.Int64(logging.FieldOffset, result.OffsetMS),
			logging.Float64("confidence", result.Confidence),
			logging.Float64("score", result.Score),
			logging.Int("candidates", result.Candidates))
		if s.hooks.OffsetDetected != nil {
			s.hooks.OffsetDetected(result)
		}
	}
}
