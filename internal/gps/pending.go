package gps

import "sync"

// RefreshResult is the outcome of an external refresh request.
type RefreshResult int

const (
	// RefreshOK means the request was accepted and a fresh fix will follow.
	RefreshOK RefreshResult = iota
	// RefreshBusy means a previous request is still outstanding.
	RefreshBusy
)

func (r RefreshResult) String() string {
	if r == RefreshOK {
		return "ok"
	}
	return "busy"
}

type refreshState int

const (
	refreshIdle refreshState = iota
	refreshAwaitingBoth
	refreshAwaitingLocation
	refreshAwaitingTime
)

// pendingFix coordinates the handshake between an external refresh request
// and the acquisition worker's completion signals. At most one refresh is in
// flight; a request while busy is an idempotent no-op, not an error.
//
// Critical sections are just the state transition; holders never block.
type pendingFix struct {
	mu    sync.Mutex
	state refreshState
}

// RequestRefresh starts a refresh when idle. It reports whether the request
// was accepted fresh.
func (p *pendingFix) RequestRefresh() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != refreshIdle {
		return false
	}
	p.state = refreshAwaitingBoth
	return true
}

// LocationReady records that a sentence supplied the location datum.
func (p *pendingFix) LocationReady() {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case refreshAwaitingBoth:
		p.state = refreshAwaitingTime
	case refreshAwaitingLocation:
		p.state = refreshIdle
	}
}

// TimeReady records that a sentence supplied the time datum.
func (p *pendingFix) TimeReady() {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case refreshAwaitingBoth:
		p.state = refreshAwaitingLocation
	case refreshAwaitingTime:
		p.state = refreshIdle
	}
}

// Busy reports whether a refresh is still outstanding.
func (p *pendingFix) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != refreshIdle
}

// locationPending reports whether the location datum is still awaited.
func (p *pendingFix) locationPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == refreshAwaitingBoth || p.state == refreshAwaitingLocation
}

// timePending reports whether the time datum is still awaited.
func (p *pendingFix) timePending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == refreshAwaitingBoth || p.state == refreshAwaitingTime
}
