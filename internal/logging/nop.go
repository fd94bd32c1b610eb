package logging

import (
	"context"
	"log/slog"
)

// NewNop returns a logger that discards every record. Useful in tests and as
// a safe default when callers pass a nil logger.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NoopHandler implements slog.Handler by dropping everything.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler        { return NoopHandler{} }
func (NoopHandler) WithGroup(string) slog.Handler             { return NoopHandler{} }
