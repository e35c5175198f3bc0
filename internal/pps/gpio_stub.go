//go:build !linux

package pps

import (
	"fmt"
	"time"
)

// Stub implementation for platforms without the GPIO character device.
func openLine(cfg Config, onPulse func(now time.Time)) (func() error, error) {
	return nil, fmt.Errorf("pps: unsupported on this platform")
}
