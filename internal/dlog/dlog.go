// Package dlog is a thin wrapper around log/slog used by every package in
// this module. It exists so call sites read "logger.Warn(...)" instead of
// threading a *slog.Logger through every constructor.
package dlog

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu   sync.Mutex
	base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// Logger is a subsystem-scoped logger. Every entry carries a "subsystem"
// field so log lines from the IBLT, the publication store and the protocol
// engine can be told apart without per-package prefixes.
//
// Logger holds only its subsystem name, not a *slog.Logger: each call
// fetches the current base handler, so a SetLevel after construction is
// observed by loggers already handed out to other packages.
type Logger struct {
	subsystem string
}

// Named returns a Logger for subsystem, e.g. dlog.Named("syncps.engine").
func Named(subsystem string) *Logger {
	return &Logger{subsystem: subsystem}
}

// SetLevel redirects every subsystem logger, including ones already
// returned by Named, to a freshly built handler at the given level.
func SetLevel(level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (lg *Logger) current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return base.With("subsystem", lg.subsystem)
}

func (lg *Logger) Debug(msg string, args ...any) { lg.current().Debug(msg, args...) }
func (lg *Logger) Info(msg string, args ...any)  { lg.current().Info(msg, args...) }
func (lg *Logger) Warn(msg string, args ...any)  { lg.current().Warn(msg, args...) }
func (lg *Logger) Error(msg string, args ...any) { lg.current().Error(msg, args...) }
