// Package obs wires the structured logger shared by every stage of the
// pipeline: the bit reader's warnings, the compositor's per-frame tracing,
// the bitmap decoder's unsupported-format notices, and the atlas builder's
// per-sprite batch summary all flow through a single zerolog.Logger so a
// caller can redirect or filter them uniformly.
package obs

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Format selects the wire format of the default logger.
type Format int

const (
	// FormatConsole renders human-readable, colorized lines. Default.
	FormatConsole Format = iota
	// FormatJSON renders newline-delimited JSON, suited to log shipping.
	FormatJSON
)

var (
	mu      sync.Mutex
	current = New(FormatConsole, os.Stderr)
)

// New builds a zerolog.Logger writing to w in the given format.
func New(format Format, w io.Writer) zerolog.Logger {
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// SetDefault installs l as the logger returned by Logger.
func SetDefault(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// Logger returns the process-wide default logger. Components that need a
// scoped sub-logger call Logger().With()... rather than holding a reference
// to the global across the lifetime of a long-running build.
func Logger() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}
