package logging

import (
	"context"
	"log/slog"
	"slices"

	"famcontents/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRequestID is the standardized structured logging key for request correlation identifiers.
	FieldRequestID = "request_id"
	// FieldContentID is the standardized structured logging key for content item identifiers.
	FieldContentID = "content_id"
	// FieldChannel is the standardized structured logging key for output channels.
	FieldChannel = "channel"
	// FieldTaskKind is the standardized structured logging key for generation task kinds.
	FieldTaskKind = "task_kind"
	// FieldVariantID identifies a stored variant.
	FieldVariantID = "variant_id"
	// FieldSource records result provenance (model or fallback).
	FieldSource = "source"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for warnings and errors.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, rid))
	}
	if id, ok := services.ContentIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldContentID, id))
	}
	if channel, ok := services.ChannelFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldChannel, channel))
	}
	if kind, ok := services.TaskKindFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldTaskKind, kind))
	}
	return fields
}

// WithContext returns a logger carrying the context's fields on every record,
// including records logged without a context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}

// contextHandler adds context fields to records logged with a context,
// skipping keys the record or logger already carries.
type contextHandler struct {
	next slog.Handler
	keys []string
}

func (h contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, f := range ContextFields(ctx) {
		if slices.Contains(h.keys, f.Key) || recordHas(r, f.Key) {
			continue
		}
		r.AddAttrs(f)
	}
	return h.next.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	keys := slices.Clip(h.keys)
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	return contextHandler{next: h.next.WithAttrs(attrs), keys: keys}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{next: h.next.WithGroup(name), keys: h.keys}
}

func recordHas(r slog.Record, key string) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		found = a.Key == key
		return !found
	})
	return found
}
