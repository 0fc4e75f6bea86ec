// Package logger configures the store's logging.
//
// It builds zerolog loggers for the module itself and bridges zerolog
// levels to the pgx tracelog levels used for SQL query logging.
package logger

import (
	"os"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// New creates the store's main logger. In the local environment output
// is pretty-printed to stderr; everywhere else it is structured JSON.
func New(env string) zerolog.Logger {
	if env == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// NewPgxLogger creates the logger pgx tracelog writes SQL statements
// and arguments to. It is separate from the main logger so query noise
// carries its own component tag and level.
func NewPgxLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("component", "pgx").Logger()
}

// GetPgxTraceLogLevel converts a zerolog level into the tracelog level
// pgx expects. Levels below debug map to trace; unknown levels fall
// back to info.
func GetPgxTraceLogLevel(level zerolog.Level) tracelog.LogLevel {
	switch level {
	case zerolog.TraceLevel:
		return tracelog.LogLevelTrace
	case zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return tracelog.LogLevelError
	default:
		return tracelog.LogLevelInfo
	}
}
