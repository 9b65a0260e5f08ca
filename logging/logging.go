// Package logging provides structured, per-subsystem logging for Raven
// Terminal, built on zerolog.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	initOnce    sync.Once
	globalLevel = zerolog.InfoLevel
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// configure resolves the global log level once from RAVEN_LOG, and is
// idempotent across calls to New. NO_COLOR is read by New itself.
func configure() {
	initOnce.Do(func() {
		if v := os.Getenv("RAVEN_LOG"); v != "" {
			if lvl, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
				globalLevel = lvl
			}
		}
		zerolog.SetGlobalLevel(globalLevel)
	})
}

// New returns a logger scoped to the given subsystem (e.g. "pty", "grid",
// "wasmhost"). Every event it emits carries a "subsystem" field.
func New(subsystem string) zerolog.Logger {
	configure()

	noColor := os.Getenv("NO_COLOR") != ""
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}
	return zerolog.New(writer).With().Timestamp().Str("subsystem", subsystem).Logger()
}

// SetLevel overrides the process-wide minimum log level at runtime.
func SetLevel(lvl zerolog.Level) {
	globalLevel = lvl
	zerolog.SetGlobalLevel(lvl)
}
