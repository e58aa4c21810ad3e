package paint

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/paint/shader"
)

// silent is the logger in effect until SetLogger installs another one.
var silent = slog.New(slog.DiscardHandler)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(silent)
}

// SetLogger routes the log output of paint and the shader package to l.
// Nothing is logged until it is called; a nil l turns logging off again.
// It may be called while other goroutines are logging.
//
// Levels:
//   - [slog.LevelDebug]: flushes, resizes, shader program creation
//   - [slog.LevelInfo]: contexts created, layers pushed
//   - [slog.LevelWarn]: rejected layer selections, failed flushes
//
// For example, to see every flush on stderr:
//
//	paint.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
	shader.SetLogger(l)
}

// Logger returns the logger installed by SetLogger.
func Logger() *slog.Logger {
	return current.Load()
}

func slogger() *slog.Logger { return current.Load() }
