package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"vidsync/internal/framecache"
	"vidsync/internal/logging"
	"vidsync/internal/sampler"
	"vidsync/internal/signature"
	"vidsync/internal/similarity"
)

// Share of auto-comparison progress spent scanning for scene changes.
const sceneScanProgressShare = 20

type autoRun struct {
	generation uint64
	logger     *slog.Logger
	pathA      string
	pathB      string
	window     Window
	scan       *sampler.SceneScan
	scanned    int
	timestamps []int64
	results    []FrameResult
	// Operation-scoped signatures; never shared with the frame cache.
	sigs map[framecache.Key]signature.Signature
}

// StartAuto samples the overlap window and reports whether the videos are
// perceptually identical. When the offsets leave no overlap it reports a
// failed verdict immediately and schedules nothing.
func (s *Session) StartAuto() error {
	s.mu.Lock()
	generation, logger, err := s.beginLocked(StateAutoComparing)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	window := s.overlapLocked()
	if window.Empty() {
		s.finishLocked()
		s.mu.Unlock()

		result := AutoResult{Summary: noOverlapSummary(window)}
		logging.WarnWithContext(logger, "auto comparison has no overlap", "auto_no_overlap",
			logging.Int64("overlap_ms", window.DurationMS()),
			logging.String(logging.FieldErrorHint, "adjust the video offsets"),
			logging.String(logging.FieldImpact, "no samples were compared"))
		if s.hooks.AutoComplete != nil {
			s.hooks.AutoComplete(result)
		}
		return nil
	}
	run := &autoRun{
		generation: generation,
		logger:     logger,
		pathA:      s.videos[SlotA].Path,
		pathB:      s.videos[SlotB].Path,
		window:     window,
		scan:       sampler.NewSceneScan(window.DurationMS()),
		sigs:       make(map[framecache.Key]signature.Signature),
	}
	if run.scan.Done() {
		run.timestamps = sampler.Timestamps(window.DurationMS(), nil)
	}
	s.auto = run
	s.mu.Unlock()

	logger.Info("auto comparison started", logging.Int64("overlap_ms", window.DurationMS()))
	s.scheduler.Schedule(s.autoStep(run))
	return nil
}

func (s *Session) autoStep(run *autoRun) func(context.Context) {
	return func(ctx context.Context) {
		s.mu.Lock()
		if !s.activeLocked(run.generation) {
			s.mu.Unlock()
			return
		}
		scanning := run.timestamps == nil
		index := len(run.results)
		s.mu.Unlock()

		if scanning {
			s.autoScanStep(ctx, run)
			return
		}
		s.autoSampleStep(ctx, run, index)
	}
}

func (s *Session) autoScanStep(ctx context.Context, run *autoRun) {
	tsA, _ := run.window.Map(run.scan.Next())
	sig := s.operationSignature(ctx, run.sigs, run.pathA, tsA)

	s.mu.Lock()
	if !s.activeLocked(run.generation) {
		s.mu.Unlock()
		return
	}
	run.scan.Observe(sig)
	run.scanned++
	percent := sceneScanProgressShare
	if steps := run.scan.Steps(); !run.scan.Done() && steps > 0 {
		percent = min(sceneScanProgressShare, run.scanned*sceneScanProgressShare/steps)
	}
	if run.scan.Done() {
		run.timestamps = sampler.Timestamps(run.window.DurationMS(), run.scan.Changes())
		run.logger.Debug("sample set ready",
			logging.Int("samples", len(run.timestamps)),
			logging.Int("scene_changes", len(run.scan.Changes())))
	}
	s.mu.Unlock()

	s.emitProgress(run.logger, OpAuto, percent)
	s.scheduler.Schedule(s.autoStep(run))
}

func (s *Session) autoSampleStep(ctx context.Context, run *autoRun, index int) {
	rel := run.timestamps[index]
	tsA, tsB := run.window.Map(rel)
	score := similarity.Score(
		s.operationSignature(ctx, run.sigs, run.pathA, tsA),
		s.operationSignature(ctx, run.sigs, run.pathB, tsB),
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
	percent := sceneScanProgressShare + len(run.results)*(100-sceneScanProgressShare)/len(run.timestamps)
	var final []FrameResult
	if done {
		final = slices.Clone(run.results)
		s.finishLocked()
	}
	thresholds := s.settings.Verdict
	s.mu.Unlock()

	s.emitProgress(run.logger, OpAuto, percent)
	if !done {
		s.scheduler.Schedule(s.autoStep(run))
		return
	}

	scores := make([]float64, len(final))
	for i, r := range final {
		scores[i] = r.Similarity
	}
	verdict := Judge(scores, thresholds)
	run.logger.Info("auto comparison complete",
		logging.Float64("overall", verdict.Overall),
		logging.Bool("identical", verdict.Identical),
		logging.Int("samples", verdict.Samples))
	if s.hooks.AutoComplete != nil {
		s.hooks.AutoComplete(AutoResult{
			Overall:   verdict.Overall,
			Identical: verdict.Identical,
			Summary:   verdict.Summary(),
			Samples:   final,
		})
	}
}

func (s *Session) operationSignature(ctx context.Context, sigs map[framecache.Key]signature.Signature, path string, timestampMS int64) signature.Signature {
	key := framecache.Key{Path: path, TimestampMS: timestampMS}
	if sig, ok := sigs[key]; ok {
		return sig
	}
	sig := s.signer.Signature(ctx, path, timestampMS)
	sigs[key] = sig
	return sig
}
