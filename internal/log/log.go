// Package log provides structured logging for go-vrig, wrapping slog.
// The level can be changed at runtime; handler selection happens once.
package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	level   slog.LevelVar
	logger  *slog.Logger
	buildMu sync.Mutex
)

// Init sets the log level ("debug", "info", "warn", "error"). May be called
// again to change the level of a running process.
func Init(name string) {
	level.Set(parseLevel(name))
	L()
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the global logger, building it on first use. Production
// deployments (VRIG_ENV=production) log JSON; everything else logs text.
func L() *slog.Logger {
	buildMu.Lock()
	defer buildMu.Unlock()
	if logger == nil {
		opts := &slog.HandlerOptions{Level: &level}
		if os.Getenv("VRIG_ENV") == "production" {
			logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
		} else {
			logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
		}
		slog.SetDefault(logger)
	}
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}
