package pixbuf

import (
	"log/slog"

	"github.com/gogpu/pixbuf/internal/logging"
	"github.com/gogpu/pixbuf/memory"
	"github.com/gogpu/pixbuf/parallel"
)

var logger logging.Holder

// SetLogger configures the logger for pixbuf and all its sub-packages.
// By default, pixbuf produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by pixbuf:
//   - [slog.LevelDebug]: pool misses and drains, group layouts, band plans
//   - [slog.LevelInfo]: default configuration replaced
//   - [slog.LevelWarn]: rejected releases, recovered task panics, munmap errors
//
// Example:
//
//	pixbuf.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	l = logger.Load()
	memory.SetLogger(l)
	parallel.SetLogger(l)
}

// Logger returns the current logger used by pixbuf.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logger.Load()
}
