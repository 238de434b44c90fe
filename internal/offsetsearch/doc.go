// Package offsetsearch discovers the time offset that best aligns two videos.
//
// A Search preloads reference signatures from the first video and a
// covering window of the second, scores a coarse grid of candidate offsets,
// then refines around the winner on a finer grid. Every unit of work is one
// Step so a caller can interleave the search with other events and cancel it
// between steps.
//
// An offset o pairs the first video at t with the second at t+o.
package offsetsearch
