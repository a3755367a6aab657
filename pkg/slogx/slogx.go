// Package slogx configures structured logging and carries a contextual
// logger through request contexts.
package slogx

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Service string
	Version string
	Env     string // "dev", "staging", "prod"
	Level   string // "debug", "info", "warn", "error"
	Format  string // "json" or "text"
}

// New builds the service-wide logger, tags every record with the service
// identity and installs it as the slog default. Dev environments get
// source locations and human-readable text unless JSON is asked for
// explicitly.
func New(cfg Config) *slog.Logger {
	dev := cfg.Env == "dev"

	opts := &slog.HandlerOptions{
		AddSource: dev,
		Level:     ParseLevel(cfg.Level),
	}

	format := strings.ToLower(cfg.Format)
	if format == "" && dev {
		format = "text"
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to its slog.Level, defaulting to info for
// anything it does not recognize.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
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
