package memory

import (
	"log/slog"

	"github.com/gogpu/pixbuf/internal/logging"
)

var logger logging.Holder

// SetLogger configures the logger used by allocators and buffers.
// Pass nil to restore the silent default. Safe for concurrent use.
//
// Most programs call pixbuf.SetLogger instead, which forwards here.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Logger returns the logger currently used by this package.
func Logger() *slog.Logger {
	return logger.Load()
}
