// Package logging builds the structured logger shared by the planner.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/vsinha/procureplan/pkg/infrastructure/config"
)

// New returns a JSON or text slog logger writing to stderr at the configured level
func New(settings config.Settings) *slog.Logger {
	return NewWithWriter(os.Stderr, settings.LogFormat, settings.LogLevel)
}

// NewWithWriter builds a logger on w. Unknown levels fall back to info.
func NewWithWriter(w io.Writer, format, level string) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if format == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
