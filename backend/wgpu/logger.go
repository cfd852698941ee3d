package wgpu

import (
	"log/slog"

	"github.com/gogpu/gtext"
)

// logger returns the shared gtext logger. The backend has no logger of
// its own; configure logging once via gtext.SetLogger.
func logger() *slog.Logger {
	return gtext.Logger()
}
