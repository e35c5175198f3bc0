package gps

import (
	"errors"
	"syscall"
	"time"

	"gpsnmead/internal/transport"
)

type failureKind int

const (
	failTransient failureKind = iota
	failTimeout
	failRefused
	failOverflow
)

// classifyReadError maps a failed read (or redial) onto a recovery class.
func classifyReadError(err error) failureKind {
	switch {
	case errors.Is(err, transport.ErrOverflow):
		// Buffer overrun means the stream desynchronized, typically a remote
		// disconnect mid-sentence.
		return failOverflow
	case errors.Is(err, transport.ErrTimeout):
		return failTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return failRefused
	case errors.Is(err, transport.ErrClosed):
		// An unconnected handle behaves like a refused connection: cool down
		// and redial rather than spinning.
		return failRefused
	default:
		return failTransient
	}
}

// recoveryAction tells the acquisition loop what to do about a failure.
type recoveryAction struct {
	fatal     bool
	reconnect bool
	cooldown  time.Duration
}

// recovery drives reconnect decisions. Timeouts are tolerated up to
// maxTimeouts before the connection is cycled; a refused connection is cycled
// immediately after a longer cooldown; an overflow ends the session.
type recovery struct {
	maxTimeouts int
	unit        time.Duration

	timeouts int
}

func newRecovery(maxTimeouts int, unit time.Duration) recovery {
	if maxTimeouts <= 0 {
		maxTimeouts = 5
	}
	if unit <= 0 {
		unit = time.Second
	}
	return recovery{maxTimeouts: maxTimeouts, unit: unit}
}

func (r *recovery) next(kind failureKind) recoveryAction {
	switch kind {
	case failOverflow:
		return recoveryAction{fatal: true}
	case failRefused:
		r.timeouts = 0
		return recoveryAction{reconnect: true, cooldown: 10 * r.unit}
	case failTimeout:
		r.timeouts++
		if r.timeouts > r.maxTimeouts {
			r.timeouts = 0
			return recoveryAction{reconnect: true, cooldown: 5 * r.unit}
		}
		return recoveryAction{}
	default:
		return recoveryAction{}
	}
}
