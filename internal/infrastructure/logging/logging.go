package logging

import (
	"log"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Level  string
	Format string // "text" or "json"
}

// Init installs the process-wide slog default and bridges the stdlib log
// package into it so third-party output lands in the same stream.
func Init(cfg Config) {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	stdLogger := slog.NewLogLogger(handler, level)
	log.SetFlags(0)
	log.SetOutput(stdLogger.Writer())
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
