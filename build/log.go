// Package build provides logging plumbing shared by every subsystem in the
// module.
package build

import (
	"github.com/btcsuite/btclog"
)

// NewSubLogger constructs a subsystem logger from the passed generator. If
// no generator is provided, logging for the subsystem is disabled; packages
// call this from their init functions so that importing the library never
// produces output unless the embedding application wires a backend in.
func NewSubLogger(subsystem string,
	genSubLogger func(string) btclog.Logger) btclog.Logger {

	if genSubLogger != nil {
		return genSubLogger(subsystem)
	}

	return btclog.Disabled
}

// SubLoggers is a map of subsystem loggers keyed by their subsystem name.
type SubLoggers map[string]btclog.Logger

// ParseAndSetDebugLevels attempts to parse the specified debug level and
// applies it to every logger in the given map of subsystem loggers.
func ParseAndSetDebugLevels(level string, subs SubLoggers) error {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		return ErrInvalidLogLevel(level)
	}

	for _, logger := range subs {
		logger.SetLevel(lvl)
	}

	return nil
}

// ErrInvalidLogLevel is returned when a log level string cannot be parsed.
type ErrInvalidLogLevel string

// Error implements the error interface.
func (e ErrInvalidLogLevel) Error() string {
	return "invalid log level: " + string(e)
}
