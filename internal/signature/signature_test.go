package signature_test

import (
	"image"
	"image/color"
	"math"
	"math/bits"
	"testing"

	"vidsync/internal/signature"
	"vidsync/internal/testsupport"
)

func TestExtractNilImageIsAbsent(t *testing.T) {
	sig := signature.Extract(nil)
	if sig.Present {
		t.Fatal("expected absent signature for nil image")
	}
	if sig.Hash != 0 || sig.EdgeDensity != 0 || sig.Histogram != (signature.Histogram{}) {
		t.Fatalf("expected zeroed features, got %+v", sig)
	}

	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if signature.Extract(empty).Present {
		t.Fatal("expected absent signature for empty image")
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	a := signature.Extract(testsupport.PatternFrame(7, 3))
	b := signature.Extract(testsupport.PatternFrame(7, 3))
	if !a.Present || !b.Present {
		t.Fatal("expected present signatures")
	}
	if a != b {
		t.Fatalf("identical images produced different signatures:\n%+v\n%+v", a, b)
	}
}

func TestHashRobustToLocalizedPerturbation(t *testing.T) {
	img := testsupport.PatternFrame(11, 5)
	base := signature.Extract(img)

	perturbed := testsupport.PatternFrame(11, 5)
	for y := 20; y < 22; y++ {
		for x := 30; x < 32; x++ {
			perturbed.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	changed := signature.Extract(perturbed)

	flipped := bits.OnesCount64(base.Hash ^ changed.Hash)
	if flipped > signature.HashBits/10 {
		t.Fatalf("small perturbation flipped %d of %d bits", flipped, signature.HashBits)
	}
}

func TestHashDiffersForUnrelatedFrames(t *testing.T) {
	a := signature.Extract(testsupport.PatternFrame(1, 1))
	b := signature.Extract(testsupport.PatternFrame(1, 2))
	if a.Hash == b.Hash {
		t.Fatal("expected unrelated frames to hash differently")
	}
}

func TestHistogramGroupsAreNormalized(t *testing.T) {
	hist := signature.ComputeHistogram(testsupport.PatternFrame(3, 9))
	for group := 0; group < 3; group++ {
		var sum float64
		for i := 0; i < signature.BinsPerChannel; i++ {
			sum += hist[group*signature.BinsPerChannel+i]
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("channel group %d sums to %f", group, sum)
		}
	}
}

func TestHistogramBucketing(t *testing.T) {
	hist := signature.ComputeHistogram(testsupport.SolidFrame(color.RGBA{R: 255, G: 16, B: 15, A: 255}))
	if hist[15] != 1 {
		t.Fatalf("red 255 should land in bucket 15, got %v", hist[:16])
	}
	if hist[16+1] != 1 {
		t.Fatalf("green 16 should land in bucket 1, got %v", hist[16:32])
	}
	if hist[32+0] != 1 {
		t.Fatalf("blue 15 should land in bucket 0, got %v", hist[32:])
	}
}

func TestHistogramDistance(t *testing.T) {
	black := signature.ComputeHistogram(testsupport.SolidFrame(color.RGBA{A: 255}))
	white := signature.ComputeHistogram(testsupport.SolidFrame(color.RGBA{R: 255, G: 255, B: 255, A: 255}))
	if d := black.Distance(black); d != 0 {
		t.Fatalf("self distance = %f", d)
	}
	if d := black.Distance(white); math.Abs(d-6) > 1e-9 {
		t.Fatalf("black/white distance = %f, want 6", d)
	}
}

func TestEdgeDensity(t *testing.T) {
	flat := signature.EdgeDensity(testsupport.SolidFrame(color.RGBA{R: 80, G: 80, B: 80, A: 255}))
	if flat != 0 {
		t.Fatalf("flat image edge density = %f", flat)
	}
	busy := signature.EdgeDensity(signature.Downscale(testsupport.PatternFrame(5, 5)))
	if busy <= 0 || busy > 1 {
		t.Fatalf("pattern edge density out of range: %f", busy)
	}
	if tiny := signature.EdgeDensity(image.NewRGBA(image.Rect(0, 0, 2, 2))); tiny != 0 {
		t.Fatalf("images without interior pixels should report 0, got %f", tiny)
	}
}

func TestDownscaleFixedResolution(t *testing.T) {
	small := signature.Downscale(testsupport.PatternFrame(2, 2))
	if small.Bounds().Dx() != 160 || small.Bounds().Dy() != 120 {
		t.Fatalf("unexpected downscaled size %v", small.Bounds())
	}
}
