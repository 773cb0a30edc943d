// Package logging holds the slog logger shared by pixbuf and its sub-packages.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Nop creates a logger that silently discards all output.
func Nop() *slog.Logger { return slog.New(nopHandler{}) }

// IsNop reports whether l discards everything.
func IsNop(l *slog.Logger) bool {
	_, ok := l.Handler().(nopHandler)
	return ok
}

// Holder stores a logger that can be swapped while other goroutines log.
// The zero value logs nothing.
type Holder struct {
	ptr atomic.Pointer[slog.Logger]
}

var nop = Nop()

// Load returns the current logger, never nil.
func (h *Holder) Load() *slog.Logger {
	if l := h.ptr.Load(); l != nil {
		return l
	}
	return nop
}

// Store replaces the logger. Nil restores the silent default.
func (h *Holder) Store(l *slog.Logger) {
	if l == nil {
		l = nop
	}
	h.ptr.Store(l)
}

// Debug reports whether debug records would be emitted, so callers can skip
// building attributes on hot paths.
func (h *Holder) Debug() bool {
	return h.Load().Enabled(context.Background(), slog.LevelDebug)
}
