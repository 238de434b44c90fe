// Package similarity scores two frame signatures into a value in [0, 1].
//
// The score blends the perceptual-hash Hamming similarity (70%) with a
// noise-floored color-histogram similarity (30%). Hash-heavy weighting keeps
// the score stable across lossy re-encodes, where raw color statistics drift.
// Absent signatures always score 0.
package similarity
