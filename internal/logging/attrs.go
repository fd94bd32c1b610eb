package logging

import "log/slog"

// String returns a string attribute for the given key.
func String(key, value string) slog.Attr { return slog.String(key, value) }

// Int64 returns an int64 attribute for the given key.
func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

// Int returns an int attribute for the given key.
func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

// Bool returns a bool attribute for the given key.
func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

// Error returns an attribute holding the error text, or an empty string
// attribute when err is nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

// Args converts attrs into the variadic any form expected by slog methods.
func Args(attrs ...slog.Attr) []any {
	out := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, attr)
	}
	return out
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger.With(String(FieldComponent, component))
}
