// Package logging wraps log/slog with the leveled, --log-driven setup
// cmd/filc exposes (spec.md §6's --log LEVEL flag). ailang's own CLI has
// no logging library in its dependency set to imitate here (see
// DESIGN.md); log/slog is the standard-library choice a project at
// ailang's dependency discipline would reach for rather than adding one
// more import just for leveled logging.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps the --log flag's accepted names to a slog.Level. Unknown
// names fall back to Info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing text-handler records to stderr at level,
// the shape every pass's driver-level progress messages go through.
func New(level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// Phase returns a child logger tagging every record with the pass that
// emitted it (build, mono, discharge), mirroring the "phase" field every
// errors.Report already carries.
func Phase(l *slog.Logger, phase string) *slog.Logger {
	return l.With("phase", phase)
}
