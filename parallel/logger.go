package parallel

import (
	"log/slog"

	"github.com/gogpu/pixbuf/internal/logging"
)

var logger logging.Holder

// SetLogger configures the logger used for scheduling diagnostics.
// Pass nil to restore the silent default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Logger returns the logger currently used by this package.
func Logger() *slog.Logger {
	return logger.Load()
}
