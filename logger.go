package gtext

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gtext/atlas"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for gtext and its sub-packages.
// By default, gtext produces no log output. Call SetLogger to enable
// logging. Pass nil to disable logging again.
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically.
//
// Log levels used by gtext:
//   - [slog.LevelDebug]: internal diagnostics (atlas geometry, buffer sizes)
//   - [slog.LevelInfo]: important lifecycle events (GPU adapter selected)
//   - [slog.LevelWarn]: non-fatal issues (unresolvable runes, release errors)
//
// Example:
//
//	gtext.SetLogger(slog.Default())
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// The atlas package logs independently; keep it on the same logger.
	atlas.SetLogger(l)
}

// Logger returns the current logger used by gtext.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
