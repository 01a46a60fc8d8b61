package loader

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record and reports itself disabled.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger enables loader diagnostics. The loader is silent by default;
// nil restores that.
//
// Levels:
//   - [slog.LevelDebug]: per-image decode timings and downscaling
//   - [slog.LevelWarn]: images replaced by a placeholder
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current loader logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
