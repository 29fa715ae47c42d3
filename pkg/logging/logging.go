// Package logging builds the structured logger used for diagnostics.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Config holds logger configuration
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"
	Output io.Writer
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  slog.LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// New creates a logger from cfg. Text output leaves out timestamps since
// it shares the terminal with the highlighted text.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}

	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	}
	return slog.New(slog.NewTextHandler(out, opts)).With("app", "color")
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
