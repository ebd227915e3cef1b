// Package logger builds the process-wide slog JSON logger. Every log line
// carries the service name and environment so aggregated logs from several
// deployments stay separable.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New configures and installs the default logger. Source locations are
// attached only at debug level; they are noise in steady-state logs.
func New(service, env, level string) *slog.Logger {
	lvl := parseLevel(level)

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})

	base := slog.New(h).With(
		slog.String("service", service),
		slog.String("env", env),
	)

	slog.SetDefault(base)
	return base
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
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
