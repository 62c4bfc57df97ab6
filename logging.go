package dblink

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// GetLogger returns a zerolog.Logger configured to the given verbosity level string.
// If verbosity is empty or unparseable, the global logger is returned unchanged.
func GetLogger(verbosity string) zerolog.Logger {
	if verbosity == "" {
		return log.Logger
	}

	level, err := zerolog.ParseLevel(verbosity)
	if err != nil {
		return log.Logger
	}

	return log.Level(level)
}

// connLogger returns the logger of a connection, tagged with its backend and name.
func connLogger(verbosity, backend, name string) zerolog.Logger {
	l := GetLogger(verbosity).With().Str("backend", backend)
	if name != "" {
		l = l.Str("conn", name)
	}
	return l.Logger()
}
