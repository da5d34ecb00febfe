// Package logging builds the zerolog logger handed to every component.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/kurobon/workbench/internal/config"
)

// New returns a logger writing to out. An unknown level falls back to info;
// verbose forces debug.
func New(cfg config.LoggingConfig, verbose bool, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
