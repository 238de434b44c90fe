package session

import (
	"strings"
	"testing"
)

func TestJudge(t *testing.T) {
	th := DefaultSettings().Verdict
	cases := []struct {
		name      string
		scores    []float64
		identical bool
	}{
		{"all perfect", []float64{1, 1, 1, 1}, true},
		{"empty", nil, false},
		{"one low sample", []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 0.74}, false},
		{"too few high samples", []float64{0.95, 0.95, 0.86, 0.86, 0.86}, false},
		{"seventy percent high", []float64{0.95, 0.95, 0.95, 0.95, 0.95, 0.95, 0.95, 0.8, 0.8, 0.8}, true},
		{"low average", []float64{0.9, 0.9, 0.9, 0.76, 0.76}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := Judge(tc.scores, th)
			if v.Identical != tc.identical {
				t.Fatalf("Judge(%v) identical = %v, want %v (%+v)", tc.scores, v.Identical, tc.identical, v)
			}
			if v.Samples != len(tc.scores) {
				t.Fatalf("samples = %d", v.Samples)
			}
		})
	}
}

func TestVerdictSummary(t *testing.T) {
	v := Judge([]float64{1, 0.5}, DefaultSettings().Verdict)
	summary := v.Summary()
	if !strings.Contains(summary, "2 samples") || !strings.Contains(summary, "1 below the per-sample floor") {
		t.Fatalf("summary = %q", summary)
	}
	if got := (Verdict{}).Summary(); got != "No samples could be compared" {
		t.Fatalf("empty summary = %q", got)
	}
}

func TestOverlapWindow(t *testing.T) {
	a := VideoRef{Path: "a", DurationMS: 5000}
	b := VideoRef{Path: "b", DurationMS: 5000}

	w := Overlap(a, b, 10000, 0)
	if !w.Empty() || w.DurationMS() > 0 {
		t.Fatalf("expected degenerate window, got %+v", w)
	}

	w = Overlap(a, b, 0, 1000)
	if w.StartMS != 0 || w.EndMS != 4000 {
		t.Fatalf("window = [%d, %d)", w.StartMS, w.EndMS)
	}
	tsA, tsB := w.Map(500)
	if tsA != 500 || tsB != 1500 {
		t.Fatalf("Map(500) = %d, %d", tsA, tsB)
	}

	w = Overlap(a, b, -2000, 0)
	if w.StartMS != 2000 || w.EndMS != 5000 {
		t.Fatalf("window = [%d, %d)", w.StartMS, w.EndMS)
	}
	tsA, tsB = w.Map(0)
	if tsA != 0 || tsB != 2000 {
		t.Fatalf("Map(0) = %d, %d", tsA, tsB)
	}
	tsA, tsB = w.Map(10000)
	if tsA != 4999 || tsB != 4999 {
		t.Fatalf("Map past the end should clip, got %d, %d", tsA, tsB)
	}
}

func TestSettingsFromConfigDefaults(t *testing.T) {
	s := DefaultSettings()
	if s.FrameCacheSize != 100 || s.StepwiseIntervalMS != 1000 {
		t.Fatalf("settings = %+v", s)
	}
	if err := s.Search.Validate(); err != nil {
		t.Fatalf("default search params invalid: %v", err)
	}
	if s.Verdict.OverallMin != 0.85 || s.Verdict.HighFraction != 0.70 {
		t.Fatalf("verdict = %+v", s.Verdict)
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cases := map[string]struct {
		mutate func(*Settings)
		want   string
	}{
		"interval":   {func(s *Settings) { s.StepwiseIntervalMS = 0 }, "stepwise interval"},
		"fine step":  {func(s *Settings) { s.Search.FineStepMS = -1 }, "offset search"},
		"sample min": {func(s *Settings) { s.Verdict.SampleMin = -0.1 }, "sample minimum"},
	}
	for name, tc := range cases {
		settings := DefaultSettings()
		tc.mutate(&settings)
		err := settings.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err = %v, want mention of %q", name, err, tc.want)
		}
	}
}
