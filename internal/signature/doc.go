// Package signature turns decoded video frames into compact, comparable
// fingerprints.
//
// A Signature carries a 64-bit average hash of the frame's coarse luminance
// structure, a 48-bin RGB histogram (16 buckets per channel, each channel
// normalized by pixel count), and a Sobel edge density. Frames that could not
// be decoded are represented by an absent Signature rather than an error so
// multi-sample operations never abort on a single bad frame.
//
// Hashing relies on goimagehash's average hash and downscaling on
// nfnt/resize; everything else operates on the small resized image.
package signature
