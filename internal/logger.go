package internal

import (
	"io"
	"log/slog"
)

// ParseLogLevel reads LOG_LEVEL values such as "debug" or "WARN". Unknown
// values fall back to info.
func ParseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// NewLogger writes text in development and JSON elsewhere. Every record
// carries the running environment.
func NewLogger(w io.Writer, cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLogLevel(cfg.LogLevel),
		AddSource: cfg.IsDevelopment() && ParseLogLevel(cfg.LogLevel) <= slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With("env", cfg.Env)
}
