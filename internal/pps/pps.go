// Package pps watches a GPS pulse-per-second signal on a GPIO line and keeps
// simple arrival statistics for the status surface. It does not discipline
// the clock itself; it exists to verify the receiver's timing output.
package pps

import (
	"sync"
	"time"
)

type Config struct {
	// Chip is the GPIO character device, e.g. "/dev/gpiochip0".
	Chip string
	// Line is the BCM line offset the PPS output is wired to.
	Line int
}

type Snapshot struct {
	Enabled      bool   `json:"enabled"`
	Pulses       uint64 `json:"pulses"`
	LastPulseUTC string `json:"last_pulse_utc,omitempty"`
}

type Monitor struct {
	cfg Config

	mu     sync.Mutex
	pulses uint64
	last   time.Time

	closeLine func() error
}

// New requests the GPIO line with rising-edge events and starts counting
// pulses. Fails on platforms without GPIO character device support.
func New(cfg Config) (*Monitor, error) {
	m := &Monitor{cfg: cfg}
	closeFn, err := openLine(cfg, m.recordPulse)
	if err != nil {
		return nil, err
	}
	m.closeLine = closeFn
	return m, nil
}

func (m *Monitor) recordPulse(now time.Time) {
	m.mu.Lock()
	m.pulses++
	m.last = now
	m.mu.Unlock()
}

func (m *Monitor) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := Snapshot{Enabled: true, Pulses: m.pulses}
	if !m.last.IsZero() {
		out.LastPulseUTC = m.last.UTC().Format(time.RFC3339Nano)
	}
	return out
}

func (m *Monitor) Close() {
	if m == nil || m.closeLine == nil {
		return
	}
	_ = m.closeLine()
	m.closeLine = nil
}
