package sampler

import "slices"

// MaxSamples caps the size of a sample set.
const MaxSamples = 20

const (
	maxSkipMS    = 500
	evenSegments = 5
)

// earlyLadder holds offsets from the skip point; early divergence between two
// cuts is the most diagnostic signal.
var earlyLadder = []int64{0, 500, 1000, 1500, 2000, 3000, 5000, 7500, 10000, 15000}

// Skip returns the leading span ignored to avoid black frames and logos.
func Skip(duration int64) int64 {
	if duration <= 0 {
		return 0
	}
	return min(int64(maxSkipMS), duration/20)
}

// Timestamps builds the sample set for duration from previously detected
// scene changes. Every entry lies in [Skip(duration), duration).
func Timestamps(duration int64, scenes []int64) []int64 {
	if duration <= 0 {
		return nil
	}
	skip := Skip(duration)
	out := make([]int64, 0, len(earlyLadder)+len(scenes)+evenSegments)

	last := skip
	for _, step := range earlyLadder {
		ts := skip + step
		if ts >= duration {
			break
		}
		out = append(out, ts)
		last = ts
	}

	for _, ts := range scenes {
		if ts >= skip && ts < duration {
			out = append(out, ts)
		}
	}

	if remaining := duration - last; remaining > 0 {
		for i := int64(0); i < evenSegments; i++ {
			out = append(out, last+(2*i+1)*remaining/(2*evenSegments))
		}
	}

	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) > MaxSamples {
		out = out[:MaxSamples]
	}
	return out
}
