// Package logging builds the zerolog loggers used by born-asp.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/born-ml/asp/internal/config"
)

// New returns a logger writing to stderr. Output is human-readable when the
// format is "console" or APP_ENV=dev. Every event carries the component field.
func New(cfg config.LogConfig, component string) zerolog.Logger {
	return NewWithWriter(os.Stderr, cfg, component)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, cfg config.LogConfig, component string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" || strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("component", component).Logger()
}
