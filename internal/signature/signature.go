package signature

import (
	"image"
	"math"

	"github.com/corona10/goimagehash"
	"github.com/nfnt/resize"
)

const (
	// HashBits is the width of the perceptual hash.
	HashBits = 64
	// BinsPerChannel is the number of histogram buckets per color channel.
	BinsPerChannel = 16
	// HistogramLen is the total number of histogram bins (R, G, B groups).
	HistogramLen = 3 * BinsPerChannel

	sampleWidth   = 160
	sampleHeight  = 120
	edgeThreshold = 50.0
)

// Histogram holds three consecutive 16-bin groups for R, G and B.
type Histogram [HistogramLen]float64

// Signature is the immutable fingerprint of one frame.
type Signature struct {
	Present     bool
	Hash        uint64
	Histogram   Histogram
	EdgeDensity float64
}

// Absent returns the signature used when no frame could be decoded.
func Absent() Signature {
	return Signature{}
}

// Extract computes the signature of img. A nil or empty image yields an
// absent signature.
func Extract(img image.Image) Signature {
	if img == nil || img.Bounds().Empty() {
		return Absent()
	}
	hash, err := goimagehash.AverageHash(img)
	if err != nil {
		return Absent()
	}
	small := Downscale(img)
	return Signature{
		Present:     true,
		Hash:        hash.GetHash(),
		Histogram:   ComputeHistogram(small),
		EdgeDensity: EdgeDensity(small),
	}
}

// Downscale resizes img to the fixed resolution used for histogram and edge
// analysis.
func Downscale(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() == sampleWidth && b.Dy() == sampleHeight {
		return img
	}
	return resize.Resize(sampleWidth, sampleHeight, img, resize.Bilinear)
}

// ComputeHistogram bins every pixel of img into 16 buckets per channel and
// normalizes each channel group by the pixel count.
func ComputeHistogram(img image.Image) Histogram {
	var hist Histogram
	if img == nil {
		return hist
	}
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total <= 0 {
		return hist
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl := rgb8(img, x, y)
			hist[bucket(r)]++
			hist[BinsPerChannel+bucket(g)]++
			hist[2*BinsPerChannel+bucket(bl)]++
		}
	}
	n := float64(total)
	for i := range hist {
		hist[i] /= n
	}
	return hist
}

// Distance returns the sum of absolute per-bin differences.
func (h Histogram) Distance(other Histogram) float64 {
	var sum float64
	for i := range h {
		sum += math.Abs(h[i] - other[i])
	}
	return sum
}

// EdgeDensity returns the fraction of interior pixels whose 3x3 Sobel
// gradient magnitude exceeds the edge threshold.
func EdgeDensity(img image.Image) float64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl := rgb8(img, b.Min.X+x, b.Min.Y+y)
			gray[y*w+x] = luminance(r, g, bl)
		}
	}
	at := func(x, y int) float64 { return gray[y*w+x] }

	edges := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1) +
				at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			if math.Sqrt(gx*gx+gy*gy) > edgeThreshold {
				edges++
			}
		}
	}
	return float64(edges) / float64((w-2)*(h-2))
}

func rgb8(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func bucket(v uint8) int {
	return int(v) * BinsPerChannel / 256
}

func luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
