package engine

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/ivlev/gallery3d/internal/loader"
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

// SetLogger enables engine diagnostics. The engine is silent by default;
// nil restores that.
//
// The logger is shared with the texture loader.
//
// Levels:
//   - [slog.LevelDebug]: per-frame surface counts and hover changes
//   - [slog.LevelInfo]: gallery lifecycle (start, resize, close)
//   - [slog.LevelWarn]: renderer errors that are not fatal
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
	loader.SetLogger(l)
}

// Logger returns the current engine logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
