package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one comparison operation across all of its ticks.
	FieldRunID = "run_id"
	// FieldOperation names the active session operation.
	FieldOperation = "operation"
	// FieldSlot is the video slot ("A" or "B").
	FieldSlot = "slot"
	// FieldPath is a media file path.
	FieldPath = "path"
	// FieldTimestamp is a frame timestamp in milliseconds.
	FieldTimestamp = "timestamp_ms"
	// FieldOffset is a time offset in milliseconds.
	FieldOffset = "offset_ms"
	// FieldEventType classifies warnings for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	runIDKey contextKey = iota
	operationKey
)

// WithRunID annotates ctx with an operation run id.
func WithRunID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// WithOperation annotates ctx with an operation name.
func WithOperation(ctx context.Context, op string) context.Context {
	op = strings.TrimSpace(op)
	if op == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, op)
}

// RunIDFromContext returns the run id stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if op, ok := ctx.Value(operationKey).(string); ok && op != "" {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
