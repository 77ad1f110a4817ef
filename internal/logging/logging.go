// Package logging provides the configured zerolog logger.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns the application logger. Handlers must never log ciphertext,
// nonces, or session ids through it; request logging is metadata only.
func New(serviceName string) zerolog.Logger {
	return zerolog.New(os.Stdout).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
