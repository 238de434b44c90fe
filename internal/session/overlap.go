package session

// Window is the span of base time where both videos have content after
// applying their offsets. A base timestamp t maps to t+OffsetA in A and
// t+OffsetB in B.
type Window struct {
	StartMS   int64
	EndMS     int64
	DurationA int64
	DurationB int64
	OffsetA   int64
	OffsetB   int64
}

// Overlap computes the shared window of a and b.
func Overlap(a, b VideoRef, offsetA, offsetB int64) Window {
	return Window{
		StartMS:   max(-offsetA, -offsetB),
		EndMS:     min(a.DurationMS-offsetA, b.DurationMS-offsetB),
		DurationA: a.DurationMS,
		DurationB: b.DurationMS,
		OffsetA:   offsetA,
		OffsetB:   offsetB,
	}
}

// DurationMS is the length of the window; non-positive means no overlap.
func (w Window) DurationMS() int64 {
	return w.EndMS - w.StartMS
}

// Empty reports a degenerate window.
func (w Window) Empty() bool {
	return w.DurationMS() <= 0
}

// Map converts a window-relative timestamp into per-video timestamps clipped
// to each video's range.
func (w Window) Map(relativeMS int64) (int64, int64) {
	base := w.StartMS + relativeMS
	return clip(base+w.OffsetA, w.DurationA), clip(base+w.OffsetB, w.DurationB)
}

func clip(ts, duration int64) int64 {
	if ts >= duration {
		ts = duration - 1
	}
	if ts < 0 {
		ts = 0
	}
	return ts
}
