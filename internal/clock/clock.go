// Package clock sets the system wall clock from GPS-derived time.
package clock

import "time"

// Setter adjusts the system clock. Implementations are best-effort; callers
// treat failures as diagnostics, not errors.
type Setter interface {
	SetSystemTime(t time.Time) error
}

// System sets the real system clock. Requires CAP_SYS_TIME.
type System struct{}

func (System) SetSystemTime(t time.Time) error {
	return setSystemTime(t)
}

// Nop discards clock updates. Used when clock adjustment is disabled or the
// process lacks the privilege.
type Nop struct{}

func (Nop) SetSystemTime(time.Time) error { return nil }
