// Package telemetry implements spec.md §6's environment-gated structured
// logging: a log-level environment variable enables line-delimited JSON
// logging to stderr; its absence yields silent operation except for
// explicit warnings. None of the example pack's teacher or sibling repos
// depend on a structured-logging library (grep across the retrieved pack
// turns up no zerolog/zap/logrus usage outside unrelated domains), so this
// is the one ambient concern built on the standard library's log/slog
// rather than an ecosystem dependency — see DESIGN.md.
package telemetry

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// EnvVar is the log-level environment variable spec.md §6 names.
const EnvVar = "DEADMOD_LOG"

// New builds a logger honouring EnvVar. An unset or unrecognized value
// yields a logger that only ever emits explicit Warn/Error records — the
// "silent except for warnings" default — while a recognized level enables
// full line-delimited JSON logging at that level.
func New() *slog.Logger {
	raw := strings.TrimSpace(os.Getenv(EnvVar))
	if raw == "" {
		return silentLogger()
	}
	level, ok := parseLevel(raw)
	if !ok {
		return silentLogger()
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func silentLogger() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	return slog.New(handler)
}

func parseLevel(raw string) (slog.Level, bool) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// WarnAll emits one warning record per message in msgs, tagged with field.
func WarnAll(logger *slog.Logger, field string, msgs []string) {
	for _, msg := range msgs {
		logger.Log(context.Background(), slog.LevelWarn, msg, slog.String("field", field))
	}
}
