package similarity_test

import (
	"image/color"
	"math"
	"testing"

	"vidsync/internal/signature"
	"vidsync/internal/similarity"
	"vidsync/internal/testsupport"
)

func sampleSignatures() []signature.Signature {
	sigs := []signature.Signature{
		signature.Absent(),
		signature.Extract(testsupport.SolidFrame(color.RGBA{A: 255})),
		signature.Extract(testsupport.SolidFrame(color.RGBA{R: 200, G: 40, B: 90, A: 255})),
	}
	for i := int64(0); i < 6; i++ {
		sigs = append(sigs, signature.Extract(testsupport.PatternFrame(42, i)))
	}
	return sigs
}

func TestScoreIsCommutativeAndBounded(t *testing.T) {
	sigs := sampleSignatures()
	for i, a := range sigs {
		for j, b := range sigs {
			ab := similarity.Score(a, b)
			ba := similarity.Score(b, a)
			if ab != ba {
				t.Fatalf("score(%d,%d)=%v but score(%d,%d)=%v", i, j, ab, j, i, ba)
			}
			if ab < 0 || ab > 1 {
				t.Fatalf("score(%d,%d)=%v out of bounds", i, j, ab)
			}
		}
	}
}

func TestScoreSelfIsOne(t *testing.T) {
	for i, sig := range sampleSignatures() {
		if !sig.Present {
			continue
		}
		if got := similarity.Score(sig, sig); got != 1.0 {
			t.Fatalf("self score for signature %d = %v", i, got)
		}
	}
}

func TestAbsentDominates(t *testing.T) {
	present := signature.Extract(testsupport.PatternFrame(1, 1))
	if got := similarity.Score(signature.Absent(), present); got != 0 {
		t.Fatalf("absent vs present = %v", got)
	}
	if got := similarity.Score(present, signature.Absent()); got != 0 {
		t.Fatalf("present vs absent = %v", got)
	}
	if got := similarity.Score(signature.Absent(), signature.Absent()); got != 0 {
		t.Fatalf("absent vs absent = %v", got)
	}
}

func TestUnrelatedFramesScoreLower(t *testing.T) {
	a := signature.Extract(testsupport.PatternFrame(9, 1))
	b := signature.Extract(testsupport.PatternFrame(9, 2))
	if got := similarity.Score(a, b); got >= 0.9 {
		t.Fatalf("unrelated frames scored %v", got)
	}
}

func TestHashSimilarity(t *testing.T) {
	cases := []struct {
		a, b uint64
		want float64
	}{
		{0, 0, 1},
		{0, ^uint64(0), 0},
		{0xFF, 0, 1 - 8.0/64},
	}
	for _, tc := range cases {
		if got := similarity.HashSimilarity(tc.a, tc.b); got != tc.want {
			t.Fatalf("HashSimilarity(%x,%x)=%v want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestHammingDistance(t *testing.T) {
	cases := []struct {
		a, b uint64
		want int
	}{
		{0, 0, 0},
		{0, ^uint64(0), 64},
		{1 << 63, 0, 1},
		{0xF0, 0x0F, 8},
		{0xDEADBEEF, 0xDEADBEEF, 0},
	}
	for _, tc := range cases {
		if got := similarity.HammingDistance(tc.a, tc.b); got != tc.want {
			t.Fatalf("HammingDistance(%#x, %#x) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
		if got := similarity.HammingDistance(tc.b, tc.a); got != tc.want {
			t.Fatalf("HammingDistance is not symmetric for %#x, %#x", tc.a, tc.b)
		}
	}
}

func TestColorSimilarityFallsBackWithoutSignificantBins(t *testing.T) {
	var empty signature.Histogram
	if _, ok := similarity.ColorSimilarity(empty, empty); ok {
		t.Fatal("expected no significant bins")
	}

	a := signature.Signature{Present: true, Hash: 0xF0F0}
	b := signature.Signature{Present: true, Hash: 0xF0F1}
	want := similarity.HashSimilarity(a.Hash, b.Hash)
	if got := similarity.Score(a, b); math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected hash-only fallback %v, got %v", want, got)
	}
}

func TestColorSimilarityNoiseFloorAndScale(t *testing.T) {
	var a, b signature.Histogram
	a[0], b[0] = 0.5, 0.45
	a[1], b[1] = 0.005, 0.0
	sim, ok := similarity.ColorSimilarity(a, b)
	if !ok {
		t.Fatal("expected a significant bin")
	}
	// only bin 0 is significant: diff 0.05 * 10 = 0.5
	if sim < 0.4999 || sim > 0.5001 {
		t.Fatalf("color similarity = %v, want 0.5", sim)
	}
}
