package framesource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"vidsync/internal/config"
	"vidsync/internal/logging"
	"vidsync/internal/media/ffprobe"
)

// ErrNoFrame is returned when ffmpeg produced no image, typically because the
// timestamp lies past the last decodable frame.
var ErrNoFrame = errors.New("no frame decoded")

// Source extracts frames by running ffmpeg once per request.
type Source struct {
	ffmpeg  string
	ffprobe string
	logger  *slog.Logger

	mu        sync.Mutex
	durations map[string]int64
}

// New builds a Source using the given binaries.
func New(ffmpegBinary, ffprobeBinary string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Source{
		ffmpeg:    strings.TrimSpace(ffmpegBinary),
		ffprobe:   strings.TrimSpace(ffprobeBinary),
		logger:    logging.NewComponentLogger(logger, "framesource"),
		durations: make(map[string]int64),
	}
}

// NewFromConfig builds a Source from the [tools] section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Source {
	return New(cfg.Tools.FFmpeg, cfg.Tools.FFprobe, logger)
}

// Duration returns the container duration of path in milliseconds. Results
// are memoized per path.
func (s *Source) Duration(ctx context.Context, path string) (int64, error) {
	s.mu.Lock()
	if d, ok := s.durations[path]; ok {
		s.mu.Unlock()
		return d, nil
	}
	s.mu.Unlock()

	result, err := ffprobe.Inspect(ctx, s.ffprobe, path)
	if err != nil {
		return 0, err
	}
	duration, err := result.DurationMS()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if video, ok := result.PrimaryVideo(); ok {
		s.logger.Debug("probed video",
			logging.String(logging.FieldPath, path),
			logging.Int64("duration_ms", duration),
			logging.String("codec", video.CodecName),
			logging.Float64("fps", video.FrameRate()))
	}

	s.mu.Lock()
	s.durations[path] = duration
	s.mu.Unlock()
	return duration, nil
}

// Frame decodes the frame displayed at timestampMS. Negative timestamps are
// treated as zero.
func (s *Source) Frame(ctx context.Context, path string, timestampMS int64) (image.Image, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("frame: empty path")
	}
	args := []string{
		"-v", "error",
		"-nostdin",
		"-ss", formatSeconds(max(timestampMS, 0)),
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary(), args...)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg frame at %d ms: %w: %s", timestampMS, err, strings.TrimSpace(stderr.String()))
	}
	if len(output) == 0 {
		return nil, ErrNoFrame
	}
	img, err := png.Decode(bytes.NewReader(output))
	if err != nil {
		return nil, fmt.Errorf("decode frame at %d ms: %w", timestampMS, err)
	}
	return img, nil
}

func (s *Source) binary() string {
	if s.ffmpeg == "" {
		return "ffmpeg"
	}
	return s.ffmpeg
}

// formatSeconds renders milliseconds as ffmpeg's seconds syntax, e.g. "12.345".
func formatSeconds(ms int64) string {
	return strconv.FormatInt(ms/1000, 10) + "." + fmt.Sprintf("%03d", ms%1000)
}
