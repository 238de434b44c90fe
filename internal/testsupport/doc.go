// Package testsupport holds helpers shared by vidsync tests: temp-dir backed
// configs, stub ffmpeg/ffprobe binaries, and synthetic video content.
package testsupport
