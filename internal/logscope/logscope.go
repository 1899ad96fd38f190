// Package logscope provides call-scoped severity overrides for slog loggers.
//
// An override is a derived logger wrapping the base handler; the base logger is
// never mutated, so there is nothing to restore when the scope ends and
// concurrent callers cannot observe each other's overrides.
package logscope

import (
	"context"
	"log/slog"
)

// Handler drops records below Floor unless the wrapped handler is running at
// debug verbosity, in which case everything the wrapped handler accepts passes.
type Handler struct {
	next  slog.Handler
	floor slog.Level
}

// NewHandler wraps next with a severity floor.
func NewHandler(next slog.Handler, floor slog.Level) *Handler {
	return &Handler{next: next, floor: floor}
}

// Enabled reports whether the record level passes both the floor and the wrapped handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	if !h.next.Enabled(ctx, level) {
		return false
	}
	if level >= h.floor {
		return true
	}
	return h.next.Enabled(ctx, slog.LevelDebug)
}

// Handle forwards the record to the wrapped handler.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

// WithAttrs returns a Handler whose wrapped handler carries attrs.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{next: h.next.WithAttrs(attrs), floor: h.floor}
}

// WithGroup returns a Handler whose wrapped handler opens group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name), floor: h.floor}
}

// Quiet returns a logger derived from l that only emits records at or above
// floor, except when l's handler is enabled for debug output.
func Quiet(l *slog.Logger, floor slog.Level) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return slog.New(NewHandler(l.Handler(), floor))
}
