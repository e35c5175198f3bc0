// Package transport provides line-oriented access to an NMEA byte stream over
// TCP or serial. Both backends share the same read contract: a bounded,
// timeout-limited read of one delimiter-terminated line.
package transport

import (
	"errors"
	"time"
)

// MaxLineBytes bounds a single line. NMEA-0183 sentences are at most 82
// characters; allow headroom for sloppy receivers.
const MaxLineBytes = 256

var (
	// ErrClosed is returned when reading without an established connection.
	ErrClosed = errors.New("transport: not connected")

	// ErrTimeout is returned when no complete line arrived within the
	// per-read timeout.
	ErrTimeout = errors.New("transport: read timeout")

	// ErrOverflow is returned when MaxLineBytes accumulate without the
	// delimiter. The stream is desynchronized at that point; callers should
	// treat the session as lost.
	ErrOverflow = errors.New("transport: line overflow")
)

// Conn is a reconnectable line transport.
//
// Connect is idempotent: calling it on an established connection is a no-op.
// ReadLineUntil returns the line including the trailing delimiter.
type Conn interface {
	Connect() error
	Disconnect() error
	ReadLineUntil(delim byte, timeout time.Duration) ([]byte, error)
}
