package session

import (
	"errors"
	"fmt"
)

// VerdictThresholds decide when two videos count as perceptually identical.
type VerdictThresholds struct {
	OverallMin   float64
	SampleMin    float64
	HighSample   float64
	HighFraction float64
}

// Validate rejects thresholds outside [0, 1].
func (th VerdictThresholds) Validate() error {
	var errs []error
	for _, check := range []struct {
		name  string
		value float64
	}{
		{"overall minimum", th.OverallMin},
		{"sample minimum", th.SampleMin},
		{"high sample", th.HighSample},
		{"high fraction", th.HighFraction},
	} {
		if check.value < 0 || check.value > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %.2f", check.name, check.value))
		}
	}
	return errors.Join(errs...)
}

// Verdict summarizes a set of sample scores.
type Verdict struct {
	Overall   float64
	Minimum   float64
	Samples   int
	High      int
	Low       int
	Identical bool
}

// Judge applies the identity thresholds: the mean must reach OverallMin,
// every sample must reach SampleMin, and at least HighFraction of the samples
// must reach HighSample.
func Judge(scores []float64, th VerdictThresholds) Verdict {
	v := Verdict{Samples: len(scores)}
	if len(scores) == 0 {
		return v
	}
	v.Minimum = scores[0]
	var sum float64
	for _, s := range scores {
		sum += s
		v.Minimum = min(v.Minimum, s)
		if s >= th.HighSample {
			v.High++
		}
		if s < th.SampleMin {
			v.Low++
		}
	}
	v.Overall = sum / float64(len(scores))
	v.Identical = v.Overall >= th.OverallMin &&
		v.Low == 0 &&
		float64(v.High) >= th.HighFraction*float64(len(scores))
	return v
}

// Summary renders the verdict as one line of text.
func (v Verdict) Summary() string {
	if v.Samples == 0 {
		return "No samples could be compared"
	}
	stats := fmt.Sprintf("%d samples, average similarity %.2f%%, minimum %.2f%%",
		v.Samples, v.Overall*100, v.Minimum*100)
	if v.Identical {
		return "Videos are perceptually identical: " + stats
	}
	return fmt.Sprintf("Videos differ: %s, %d below the per-sample floor, %d of %d highly similar",
		stats, v.Low, v.High, v.Samples)
}

func noOverlapSummary(w Window) string {
	return fmt.Sprintf("No overlapping duration with offsets A=%+d ms, B=%+d ms (durations %d ms and %d ms)",
		w.OffsetA, w.OffsetB, w.DurationA, w.DurationB)
}
