//go:build !linux

package clock

import (
	"fmt"
	"time"
)

// Stub implementation for non-Linux platforms.
func setSystemTime(t time.Time) error {
	return fmt.Errorf("clock: setting system time unsupported on this platform")
}
