package garden

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr is read from the frame goroutine and may be swapped from any
// goroutine (e.g. a config watcher), hence the atomic pointer.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by garden and its sub-packages.
// By default garden produces no log output. Pass nil to restore that.
//
// Log levels used by garden:
//   - [slog.LevelDebug]: per-tick timing when a Scene is in debug mode
//   - [slog.LevelInfo]: lifecycle events (loop start/stop, resize)
//   - [slog.LevelWarn]: tree shape warnings, failed stages, screenshots
//   - [slog.LevelError]: clock regression
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
