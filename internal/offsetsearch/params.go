package offsetsearch

import (
	"errors"
	"fmt"
)

// Params tunes the candidate grid and preload windows.
type Params struct {
	MaxOffsetMS      int64
	CoarseStepMS     int64
	FineStepMS       int64
	FineWindowMS     int64
	PreloadStepMS    int64
	ReferenceStartMS int64
	ReferenceEndMS   int64
	RefineMinScore   float64
}

// DefaultParams returns the stock search settings.
func DefaultParams() Params {
	return Params{
		MaxOffsetMS:      15000,
		CoarseStepMS:     1000,
		FineStepMS:       25,
		FineWindowMS:     750,
		PreloadStepMS:    500,
		ReferenceStartMS: 2000,
		ReferenceEndMS:   20000,
		RefineMinScore:   0.4,
	}
}

// Validate rejects settings that would produce an empty or unbounded grid.
func (p Params) Validate() error {
	var errs []error
	if p.MaxOffsetMS < 0 {
		errs = append(errs, fmt.Errorf("max offset must be non-negative, got %d", p.MaxOffsetMS))
	}
	steps := []struct {
		name  string
		value int64
	}{
		{"coarse step", p.CoarseStepMS},
		{"fine step", p.FineStepMS},
		{"preload step", p.PreloadStepMS},
	}
	for _, step := range steps {
		if step.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", step.name, step.value))
		}
	}
	if p.FineWindowMS < 0 {
		errs = append(errs, fmt.Errorf("fine window must be non-negative, got %d", p.FineWindowMS))
	}
	if p.ReferenceStartMS < 0 || p.ReferenceEndMS <= p.ReferenceStartMS {
		errs = append(errs, fmt.Errorf("reference window [%d, %d) is empty", p.ReferenceStartMS, p.ReferenceEndMS))
	}
	if p.RefineMinScore < 0 || p.RefineMinScore > 1 {
		errs = append(errs, fmt.Errorf("refine min score must be within [0,1], got %.2f", p.RefineMinScore))
	}
	return errors.Join(errs...)
}
