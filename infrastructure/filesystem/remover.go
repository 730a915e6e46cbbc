package filesystem

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
)

// Remover deletes files on a best-effort basis. Failures are logged and
// never returned.
type Remover struct {
	logger *slog.Logger
}

// NewRemover creates a Remover that reports failures to logger.
func NewRemover(logger *slog.Logger) Remover {
	if logger == nil {
		logger = slog.Default()
	}
	return Remover{logger: logger}
}

// Remove deletes each path and returns how many were removed. Paths that are
// already gone count as removed.
func (r Remover) Remove(paths ...string) int {
	removed := 0
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("failed to remove file", slog.String("path", p), slog.Any("error", err))
			continue
		}
		removed++
	}
	return removed
}
