// Package sampler picks the timestamps a full comparison inspects.
//
// A sample set mixes a fixed ladder of early offsets, scene changes detected
// in the first half minute of the reference video, and evenly spaced points
// across the remainder. Sets are sorted, deduplicated and capped so the cost
// of one comparison stays bounded regardless of duration.
package sampler
