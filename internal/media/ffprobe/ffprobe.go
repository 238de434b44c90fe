package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoDuration is returned when neither the container nor the primary video
// stream reports a usable duration.
var ErrNoDuration = errors.New("ffprobe: no duration reported")

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Duration     string `json:"duration"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NBFrames     string `json:"nb_frames"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return Parse(output)
}

// Parse decodes an ffprobe JSON payload.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// PrimaryVideo returns the first video stream.
func (r Result) PrimaryVideo() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	return Stream{}, false
}

// DurationMS returns the container duration in milliseconds, truncated toward
// zero. The primary video stream's duration is used when the container omits
// one.
func (r Result) DurationMS() (int64, error) {
	if ms, err := parseMillis(r.Format.Duration); err == nil {
		return ms, nil
	}
	if video, ok := r.PrimaryVideo(); ok {
		if ms, err := parseMillis(video.Duration); err == nil {
			return ms, nil
		}
	}
	return 0, ErrNoDuration
}

// FrameRate returns the average frame rate of the stream, or 0 when unknown.
func (s Stream) FrameRate() float64 {
	num, den, found := strings.Cut(strings.TrimSpace(s.AvgFrameRate), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0
	}
	return n / d
}

// parseMillis converts a decimal seconds string such as "12.345678" into
// whole milliseconds without floating point rounding.
func parseMillis(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "N/A" {
		return 0, ErrNoDuration
	}
	whole, frac, _ := strings.Cut(value, ".")
	seconds, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("ffprobe: invalid duration %q", value)
	}
	frac = (frac + "000")[:3]
	millis, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || millis < 0 {
		return 0, fmt.Errorf("ffprobe: invalid duration %q", value)
	}
	return seconds*1000 + millis, nil
}
