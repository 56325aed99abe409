// package shared defines helpers used across the service: logging,
// configuration, database access and formatting.
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a [log.Logger] writing to w with timestamps and
// caller reporting enabled. A nil writer defaults to [os.Stderr].
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    true,
	})
}

// WithLogger creates a child [log.Logger] carrying the key-value pairs
// on every entry. Handlers receive one tagged with their component name,
// requests one tagged with a request ID.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string, used for
// request correlation IDs in the access log.
func GenerateID() string {
	return uuid.New().String()
}
