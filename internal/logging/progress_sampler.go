package logging

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when the operation changes or the percentage crosses a bucket boundary.
type ProgressSampler struct {
	bucketSize int
	lastOp     string
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 5%) or when the operation changes.
func NewProgressSampler(bucketSize int) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event should be logged.
func (s *ProgressSampler) ShouldLog(percent int, operation string) bool {
	if s == nil {
		return true
	}
	emit := false
	if operation != s.lastOp {
		s.lastOp = operation
		s.lastBucket = -1
		emit = true
	}
	if percent > 100 {
		percent = 100
	}
	if percent >= 0 {
		if bucket := percent / s.bucketSize; bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state (e.g. when a new operation starts).
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastOp = ""
	s.lastBucket = -1
}
