package offsetsearch

import (
	"context"

	"vidsync/internal/signature"
	"vidsync/internal/similarity"
)

// Probe returns the signature of one video at a timestamp.
type Probe func(ctx context.Context, timestampMS int64) signature.Signature

// Phase identifies the stage a Search is in.
type Phase int

const (
	PhasePreloadA Phase = iota
	PhasePreloadB
	PhaseCoarse
	PhaseFine
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhasePreloadA:
		return "preload_a"
	case PhasePreloadB:
		return "preload_b"
	case PhaseCoarse:
		return "coarse"
	case PhaseFine:
		return "fine"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Result is the outcome of a completed search.
type Result struct {
	OffsetMS   int64
	Score      float64
	Confidence float64
	Median     float64
	P75        float64
	Candidates int
	Refined    bool
}

// Search is an incremental coarse-to-fine offset search.
type Search struct {
	params Params
	probeA Probe
	probeB Probe

	refTimes []int64
	refSigs  map[int64]signature.Signature
	bTimes   []int64
	bSigs    map[int64]signature.Signature

	coarse []int64
	fine   []int64
	scores map[int64]float64
	order  []int64

	phase   Phase
	cursor  int
	done    int
	planned int
	refined bool
}

// New prepares a search over two videos of the given durations. Params are
// used as given; call Validate first when they come from user input.
func New(params Params, durationA, durationB int64, probeA, probeB Probe) *Search {
	s := &Search{
		params:  params,
		probeA:  probeA,
		probeB:  probeB,
		refSigs: make(map[int64]signature.Signature),
		bSigs:   make(map[int64]signature.Signature),
		scores:  make(map[int64]float64),
	}

	refEnd := min(params.ReferenceEndMS, durationA)
	for ts := params.ReferenceStartMS; ts < refEnd; ts += params.PreloadStepMS {
		s.refTimes = append(s.refTimes, ts)
	}

	bStart := params.ReferenceStartMS - params.MaxOffsetMS
	if bStart < 0 {
		steps := (-bStart + params.PreloadStepMS - 1) / params.PreloadStepMS
		bStart += steps * params.PreloadStepMS
	}
	bEnd := refEnd + params.MaxOffsetMS
	for ts := bStart; ts <= bEnd && ts < durationB; ts += params.PreloadStepMS {
		s.bTimes = append(s.bTimes, ts)
	}

	first := -(params.MaxOffsetMS / params.CoarseStepMS) * params.CoarseStepMS
	for o := first; o <= params.MaxOffsetMS; o += params.CoarseStepMS {
		s.coarse = append(s.coarse, o)
	}

	fineSpan := 0
	if params.FineStepMS > 0 {
		fineSpan = int(2*params.FineWindowMS/params.FineStepMS) + 1
	}
	s.planned = len(s.refTimes) + len(s.bTimes) + len(s.coarse) + fineSpan
	s.advancePhase()
	return s
}

// Phase returns the current stage.
func (s *Search) Phase() Phase {
	return s.phase
}

// Done reports whether the search has finished.
func (s *Search) Done() bool {
	return s.phase == PhaseDone
}

// Progress returns completion as a percentage in [0, 100].
func (s *Search) Progress() int {
	if s.phase == PhaseDone {
		return 100
	}
	if s.planned == 0 {
		return 0
	}
	return min(99, s.done*100/s.planned)
}

// Step performs one unit of work: one preload probe or one candidate score.
// It returns false once the search is done.
func (s *Search) Step(ctx context.Context) bool {
	switch s.phase {
	case PhasePreloadA:
		ts := s.refTimes[s.cursor]
		s.refSigs[ts] = s.probeA(ctx, ts)
	case PhasePreloadB:
		ts := s.bTimes[s.cursor]
		s.bSigs[ts] = s.probeB(ctx, ts)
	case PhaseCoarse:
		s.scoreCandidate(s.coarse[s.cursor])
	case PhaseFine:
		s.scoreCandidate(s.fine[s.cursor])
	default:
		return false
	}
	s.cursor++
	s.done++
	s.advancePhase()
	return s.phase != PhaseDone
}

// Result reports the best offset. ok is false when no candidate had a single
// valid comparison.
func (s *Search) Result() (Result, bool) {
	best, score, ok := s.best(s.order)
	if !ok {
		return Result{}, false
	}
	all := make([]float64, 0, len(s.order))
	for _, o := range s.order {
		all = append(all, s.scores[o])
	}
	stats := Confidence(all, score)
	return Result{
		OffsetMS:   best,
		Score:      score,
		Confidence: stats.Confidence,
		Median:     stats.Median,
		P75:        stats.P75,
		Candidates: len(all),
		Refined:    s.refined,
	}, true
}

func (s *Search) advancePhase() {
	for {
		var size int
		switch s.phase {
		case PhasePreloadA:
			size = len(s.refTimes)
		case PhasePreloadB:
			size = len(s.bTimes)
		case PhaseCoarse:
			size = len(s.coarse)
		case PhaseFine:
			size = len(s.fine)
		default:
			return
		}
		if s.cursor < size {
			return
		}
		s.cursor = 0
		if s.phase == PhaseCoarse {
			s.planFine()
			if len(s.fine) == 0 {
				s.phase = PhaseDone
				return
			}
		}
		s.phase++
	}
}

// planFine decides whether the coarse winner deserves refinement and, if so,
// lists the untested fine candidates around it.
func (s *Search) planFine() {
	best, score, ok := s.best(s.order)
	if !ok || score < s.params.RefineMinScore {
		return
	}
	neighbor := false
	for _, o := range s.order {
		if o != best && abs(o-best) <= s.params.CoarseStepMS {
			neighbor = true
			break
		}
	}
	if !neighbor {
		return
	}
	tested := make(map[int64]bool, len(s.coarse))
	for _, o := range s.coarse {
		tested[o] = true
	}
	for o := best - s.params.FineWindowMS; o <= best+s.params.FineWindowMS; o += s.params.FineStepMS {
		if abs(o) > s.params.MaxOffsetMS || tested[o] || !s.reachable(o) {
			continue
		}
		s.fine = append(s.fine, o)
	}
	s.refined = len(s.fine) > 0
	s.planned = s.done + len(s.fine)
}

// reachable reports whether offset pairs at least one reference timestamp with
// a preloaded B timestamp. Unreachable candidates could never be scored.
func (s *Search) reachable(offset int64) bool {
	for _, ts := range s.refTimes {
		if _, ok := s.bSigs[ts+offset]; ok {
			return true
		}
	}
	return false
}

func (s *Search) scoreCandidate(offset int64) {
	var sum float64
	valid := 0
	for _, ts := range s.refTimes {
		bSig, ok := s.bSigs[ts+offset]
		if !ok {
			continue
		}
		sum += similarity.Score(s.refSigs[ts], bSig)
		valid++
	}
	if valid == 0 {
		return
	}
	s.scores[offset] = sum / float64(valid)
	s.order = append(s.order, offset)
}

// best picks the highest score, preferring the smaller absolute offset on
// ties.
func (s *Search) best(candidates []int64) (int64, float64, bool) {
	var (
		bestOffset int64
		bestScore  float64
		found      bool
	)
	for _, o := range candidates {
		score := s.scores[o]
		switch {
		case !found,
			score > bestScore,
			score == bestScore && abs(o) < abs(bestOffset),
			score == bestScore && abs(o) == abs(bestOffset) && o < bestOffset:
			bestOffset, bestScore, found = o, score, true
		}
	}
	return bestOffset, bestScore, found
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
