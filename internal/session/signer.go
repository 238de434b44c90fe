package session

import (
	"context"
	"log/slog"

	"vidsync/internal/logging"
	"vidsync/internal/signature"
)

// SourceSigner extracts signatures from frames decoded by a FrameSource.
type SourceSigner struct {
	source FrameSource
	logger *slog.Logger
}

// NewSourceSigner wraps source.
func NewSourceSigner(source FrameSource, logger *slog.Logger) *SourceSigner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SourceSigner{source: source, logger: logger}
}

// Signature decodes the frame at timestampMS. Decode failures are logged and
// produce an absent signature.
func (s *SourceSigner) Signature(ctx context.Context, path string, timestampMS int64) signature.Signature {
	img, err := s.source.Frame(ctx, path, timestampMS)
	if err != nil {
		s.logger.Debug("frame unavailable",
			logging.String(logging.FieldPath, path),
			logging.Int64(logging.FieldTimestamp, timestampMS),
			logging.Error(err))
		return signature.Absent()
	}
	return signature.Extract(img)
}
