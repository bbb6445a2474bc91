package dbgtext

import (
	"log/slog"
	"sync/atomic"
)

// silent is the logger in effect until SetLogger installs another one.
var silent = slog.New(slog.DiscardHandler)

var pkgLogger atomic.Pointer[slog.Logger]

func init() { pkgLogger.Store(silent) }

// SetLogger sets the logger shared by every Context and by the soft and
// wgpu backends. Nothing is logged until it is called; nil restores the
// silent default. It may be called concurrently with rendering.
//
// Records written, by level:
//   - Debug: "dbgtext: context created" (capacity, buffer size, overflow
//     policy, code page), "dbgtext: rendered" (vertices), "dbgtext: context
//     destroyed" (frame stats), and per-draw or pipeline-cache records from
//     the backends.
//   - Info: "wgpu: target opened" (adapter name, size).
//   - Warn: "dbgtext: glyph capacity exceeded" (dropped glyph count),
//     "dbgtext: map vertex buffer failed", "dbgtext: draw failed", and
//     HAL backends that could not be opened.
//
// A single [Context] can override it with [WithLogger].
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	pkgLogger.Store(l)
}

// Logger returns the logger set with SetLogger.
func Logger() *slog.Logger {
	return pkgLogger.Load()
}
