package pps

import (
	"testing"
	"time"
)

func TestMonitor_SnapshotTracksPulses(t *testing.T) {
	m := &Monitor{}

	first := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m.recordPulse(first)
	m.recordPulse(first.Add(time.Second))

	snap := m.Snapshot()
	if snap.Pulses != 2 {
		t.Fatalf("pulses=%d want 2", snap.Pulses)
	}
	if snap.LastPulseUTC != first.Add(time.Second).Format(time.RFC3339Nano) {
		t.Fatalf("last=%q", snap.LastPulseUTC)
	}
}

func TestMonitor_NilSnapshot(t *testing.T) {
	var m *Monitor
	if snap := m.Snapshot(); snap.Enabled || snap.Pulses != 0 {
		t.Fatalf("snap=%+v want zero", snap)
	}
	m.Close()
}
