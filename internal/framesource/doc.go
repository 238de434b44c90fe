// Package framesource decodes single frames and durations with the ffmpeg and
// ffprobe command-line tools.
package framesource
