package similarity

import (
	"math"

	"github.com/corona10/goimagehash"

	"vidsync/internal/signature"
)

const (
	// HashWeight is the share of the perceptual-hash similarity in Score.
	HashWeight = 0.70
	// ColorWeight is the share of the color-histogram similarity in Score.
	ColorWeight = 0.30

	colorNoiseFloor = 0.01
	colorDiffScale  = 10
)

// Score compares two signatures. The result is commutative and lies in
// [0, 1]; identical present signatures score exactly 1.
func Score(a, b signature.Signature) float64 {
	if !a.Present || !b.Present {
		return 0
	}
	hashSim := HashSimilarity(a.Hash, b.Hash)
	colorSim, ok := ColorSimilarity(a.Histogram, b.Histogram)
	if !ok {
		colorSim = hashSim
	}
	return clamp01(HashWeight*hashSim + ColorWeight*colorSim)
}

// HashSimilarity returns 1 - hamming(a, b)/64.
func HashSimilarity(a, b uint64) float64 {
	return 1 - float64(HammingDistance(a, b))/signature.HashBits
}

// HammingDistance counts differing bits between two stored average hashes.
func HammingDistance(a, b uint64) int {
	distance, err := goimagehash.NewImageHash(a, goimagehash.AHash).
		Distance(goimagehash.NewImageHash(b, goimagehash.AHash))
	if err != nil {
		return signature.HashBits
	}
	return distance
}

// ColorSimilarity compares histograms over bins whose mean occupancy clears a
// noise floor. ok is false when no bin is significant.
func ColorSimilarity(a, b signature.Histogram) (sim float64, ok bool) {
	var diff float64
	significant := 0
	for i := range a {
		if (a[i]+b[i])/2 <= colorNoiseFloor {
			continue
		}
		diff += math.Abs(a[i] - b[i])
		significant++
	}
	if significant == 0 {
		return 0, false
	}
	return 1 - math.Min(1, diff/float64(significant)*colorDiffScale), true
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
