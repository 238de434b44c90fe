package sampler

import "vidsync/internal/signature"

// SceneChangeThreshold is the histogram L1 distance above which two adjacent
// frames belong to different scenes.
const SceneChangeThreshold = 0.3

const (
	sceneScanStepMS  = 500
	sceneScanLimitMS = 30000
	maxSceneChanges  = 5
)

// IsSceneChange reports whether cur starts a new scene relative to prev.
// Absent frames never count as a change.
func IsSceneChange(prev, cur signature.Signature) bool {
	if !prev.Present || !cur.Present {
		return false
	}
	return prev.Histogram.Distance(cur.Histogram) > SceneChangeThreshold
}

// SceneScan walks the opening of a video one probe at a time, collecting
// scene-change timestamps. Callers alternate Next and Observe until Done.
type SceneScan struct {
	start   int64
	next    int64
	end     int64
	prev    signature.Signature
	changes []int64
}

// NewSceneScan prepares a scan over [Skip(duration), min(30s, duration)).
func NewSceneScan(duration int64) *SceneScan {
	start := Skip(duration)
	return &SceneScan{
		start: start,
		next:  start,
		end:   min(int64(sceneScanLimitMS), max(duration, 0)),
	}
}

// Done reports whether the scan has reached its window end or found enough
// changes.
func (s *SceneScan) Done() bool {
	return len(s.changes) >= maxSceneChanges || s.next >= s.end
}

// Next returns the timestamp the caller should probe.
func (s *SceneScan) Next() int64 {
	return s.next
}

// Observe records the signature probed at Next and advances the scan.
func (s *SceneScan) Observe(sig signature.Signature) {
	if s.Done() {
		return
	}
	if IsSceneChange(s.prev, sig) {
		s.changes = append(s.changes, s.next)
	}
	s.prev = sig
	s.next += sceneScanStepMS
}

// Steps returns the maximum number of probes the scan can take.
func (s *SceneScan) Steps() int {
	if s.end <= s.start {
		return 0
	}
	return int((s.end - s.start + sceneScanStepMS - 1) / sceneScanStepMS)
}

// Changes returns the scene-change timestamps found so far.
func (s *SceneScan) Changes() []int64 {
	out := make([]int64, len(s.changes))
	copy(out, s.changes)
	return out
}
