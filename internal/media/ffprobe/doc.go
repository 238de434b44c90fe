// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe and Parse decodes its payload. Result exposes the
// pieces the comparison engine needs: the primary video stream, its frame
// rate, and the container duration in whole milliseconds.
package ffprobe
