package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns the application logger. Output is JSON to stdout; set
// MARINA_LOG_PRETTY=1 for a human-readable console writer during development.
func New() zerolog.Logger {
	if os.Getenv("MARINA_LOG_PRETTY") == "1" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
