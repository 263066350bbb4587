// Package log wraps zerolog behind a tiny construction helper so the rest
// of the codebase never configures output formats itself.
package log

import (
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

type Logger = zerolog.Logger

type Fields map[string]interface{}

// New builds the service logger.  Local development gets the console
// writer; everything else emits JSON lines on stdout.
func New(env string) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env == "dev" || env == "local" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return zlog.Level(zerolog.InfoLevel).With().Str("service", "auth-service").Logger()
}

// With returns a child logger annotated with the given fields.
func With(logger Logger, fields Fields) Logger {
	event := logger
	for k, v := range fields {
		event = event.With().Interface(k, v).Logger()
	}
	return event
}
