package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	contentIDKey contextKey = "content_id"
	channelKey   contextKey = "channel"
	taskKindKey  contextKey = "task_kind"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}

// WithContentID annotates context with the content item being worked on.
func WithContentID(ctx context.Context, id string) context.Context {
	return withString(ctx, contentIDKey, id)
}

// ContentIDFromContext returns the content identifier if present.
func ContentIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, contentIDKey)
}

// WithChannel annotates context with the output channel.
func WithChannel(ctx context.Context, channel string) context.Context {
	return withString(ctx, channelKey, channel)
}

// ChannelFromContext returns the channel if present.
func ChannelFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, channelKey)
}

// WithTaskKind annotates context with the generation task kind.
func WithTaskKind(ctx context.Context, kind string) context.Context {
	return withString(ctx, taskKindKey, kind)
}

// TaskKindFromContext returns the task kind if present.
func TaskKindFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, taskKindKey)
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
