package offsetsearch

import (
	"slices"
)

const (
	minScoredCandidates = 3
	separationWeight    = 0.6
	absoluteWeight      = 0.4
	absoluteFloor       = 0.7
)

// Stats summarizes the score distribution behind a confidence value.
type Stats struct {
	Median     float64
	P75        float64
	Confidence float64
}

// Confidence rates how far best stands out from the other candidate scores.
// Fewer than three scores yield zero confidence.
func Confidence(scores []float64, best float64) Stats {
	if len(scores) < minScoredCandidates {
		return Stats{}
	}
	sorted := slices.Clone(scores)
	slices.Sort(sorted)
	median := percentile(sorted, 0.5)
	p75 := percentile(sorted, 0.75)

	separation := clamp01((best - p75) / (1 - p75 + 0.001))
	absolute := clamp01((best - absoluteFloor) / (1 - absoluteFloor))
	return Stats{
		Median:     median,
		P75:        p75,
		Confidence: separationWeight*separation + absoluteWeight*absolute,
	}
}

// percentile interpolates linearly between closest ranks of sorted.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
