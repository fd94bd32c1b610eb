package services

import "context"

type contextKey string

const (
	itemIDKey        contextKey = "item_id"
	channelIDKey     contextKey = "channel_id"
	taskKey          contextKey = "task"
	correlationIDKey contextKey = "correlation_id"
)

// WithItemID annotates context with the transfer item identifier.
func WithItemID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext extracts the transfer item identifier if present.
func ItemIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(itemIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithChannelID annotates context with the source channel identifier.
func WithChannelID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, channelIDKey, id)
}

// ChannelIDFromContext extracts the source channel identifier if present.
func ChannelIDFromContext(ctx context.Context) (int64, bool) {
	if v, ok := ctx.Value(channelIDKey).(int64); ok {
		return v, true
	}
	return 0, false
}

// WithTask annotates context with the workflow task name.
func WithTask(ctx context.Context, task string) context.Context {
	if task == "" {
		return ctx
	}
	return context.WithValue(ctx, taskKey, task)
}

// TaskFromContext returns the task name if present.
func TaskFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(taskKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCorrelationID annotates context with a correlation identifier.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation identifier if present.
func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(correlationIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
