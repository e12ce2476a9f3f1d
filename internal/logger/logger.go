// Package logger provides leveled structured logging.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var log = zerolog.Nop()

// Init initializes the default logger with the specified level and format.
// Format "text" uses a human-readable console writer; anything else emits JSON.
func Init(level string, format string) {
	var lvl zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	default:
		lvl = zerolog.InfoLevel
	}

	out := zerolog.New(os.Stderr)
	if strings.ToLower(format) == "text" {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log = out.With().Timestamp().Logger().Level(lvl)
}

func Debug(format string, args ...interface{}) {
	log.Debug().Msgf(format, args...)
}

func Info(format string, args ...interface{}) {
	log.Info().Msgf(format, args...)
}

func Warn(format string, args ...interface{}) {
	log.Warn().Msgf(format, args...)
}

func Error(format string, args ...interface{}) {
	log.Error().Msgf(format, args...)
}

// Fatal logs at fatal level and exits the process.
func Fatal(format string, args ...interface{}) {
	log.Fatal().Msgf(format, args...)
}
