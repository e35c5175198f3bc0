package gps

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gpsnmead/internal/transport"
)

// ClockSetter adjusts the system clock from an accepted GPS time.
// Best-effort: failures are logged, never fatal.
type ClockSetter interface {
	SetSystemTime(t time.Time) error
}

// Publisher receives fix snapshots and fix-quality status updates as they
// arrive. Implementations must be safe for calls from the acquisition worker.
type Publisher interface {
	PublishFix(snap Snapshot)
	PublishStatus(label string, busy bool)
}

type Config struct {
	// ReadTimeout bounds a single line read.
	ReadTimeout time.Duration

	// MaxTimeouts is the number of consecutive read timeouts tolerated before
	// the connection is cycled.
	MaxTimeouts int

	// CooldownUnit scales reconnect cooldowns. One second on real hardware.
	CooldownUnit time.Duration

	// Debug logs every line and parse reject.
	Debug bool
}

// Service owns the acquisition worker: a tight blocking-read loop that pulls
// lines from the transport, decodes them, folds them into the fix state, and
// recovers from transport failures. A single supervised goroutine, started on
// Start and joined on Close; Close is the one authoritative stop signal.
type Service struct {
	cfg   Config
	conn  transport.Conn
	clock ClockSetter
	pub   Publisher

	pending   pendingFix
	connected atomic.Bool
	last      atomic.Value // Snapshot

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config, conn transport.Conn, clk ClockSetter, pub Publisher) *Service {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.MaxTimeouts <= 0 {
		cfg.MaxTimeouts = 5
	}
	if cfg.CooldownUnit <= 0 {
		cfg.CooldownUnit = time.Second
	}
	if clk == nil {
		clk = nopClock{}
	}
	s := &Service{cfg: cfg, conn: conn, clock: clk, pub: pub}
	s.last.Store(Snapshot{})
	return s
}

// Probe reads up to a few lines with a short timeout and reports whether the
// stream looks like NMEA: any line with valid framing and checksum counts,
// whether or not the sentence type is one we extract from. Used as a
// handshake before committing to full acquisition.
func (s *Service) Probe(timeout time.Duration) bool {
	if s == nil {
		return false
	}
	if err := s.conn.Connect(); err != nil {
		return false
	}
	const probeMaxLines = 3
	for i := 0; i < probeMaxLines; i++ {
		raw, err := s.conn.ReadLineUntil('\n', timeout)
		if err != nil {
			return false
		}
		if DecodeLine(string(raw)).Kind != KindInvalid {
			return true
		}
	}
	return false
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gps service is nil")
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	if err := s.conn.Connect(); err != nil {
		return err
	}
	s.connected.Store(true)
	s.last.Store(Snapshot{Connected: true})

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(childCtx)
	}()
	return nil
}

// Close stops the worker and drops the connection. Accumulated fix state
// remains readable through Snapshot.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	_ = s.conn.Disconnect()
	s.connected.Store(false)
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	snap := v.(Snapshot)
	snap.Connected = s.connected.Load()
	snap.Busy = s.pending.Busy()
	return snap
}

// Connected reports whether the acquisition session is live. It flips false
// when Close is called or when an overflow forces the session down.
func (s *Service) Connected() bool {
	if s == nil {
		return false
	}
	return s.connected.Load()
}

// RequestRefresh asks the worker for a fresh location/time fix. RefreshOK
// means accepted; RefreshBusy means a previous request is still outstanding
// (no state change). Completion is observable via Snapshot().Busy.
func (s *Service) RequestRefresh() RefreshResult {
	if s.pending.RequestRefresh() {
		return RefreshOK
	}
	return RefreshBusy
}

func (s *Service) run(ctx context.Context) {
	var st fixState
	rec := newRecovery(s.cfg.MaxTimeouts, s.cfg.CooldownUnit)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		raw, err := s.conn.ReadLineUntil('\n', s.cfg.ReadTimeout)
		if err != nil {
			act := rec.next(classifyReadError(err))
			switch {
			case act.fatal:
				log.Printf("gps overflow detected, possible remote disconnect, stopping acquisition")
				s.connected.Store(false)
				_ = s.conn.Disconnect()
				s.publishSnapshot(&st)
				return
			case act.reconnect:
				log.Printf("gps read failed (%v), reconnecting in %s", err, act.cooldown)
				_ = s.conn.Disconnect()
				if !sleepCtx(ctx, act.cooldown) {
					return
				}
				if cerr := s.conn.Connect(); cerr != nil {
					log.Printf("gps reconnect failed: %v", cerr)
				}
			}
			continue
		}

		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		s.debugf("gps line %s", line)

		sent := DecodeLine(line)
		switch sent.Kind {
		case KindInvalid:
			continue
		case KindUnparsed:
			s.debugf("gps sentence not parsed: %s", sent.Reason)
			continue
		}

		res := st.apply(sent, time.Now().UTC())
		if res.time {
			if err := s.clock.SetSystemTime(res.when); err != nil {
				s.debugf("gps set system time: %v", err)
			}
		}
		if res.location {
			s.pending.LocationReady()
		}
		if res.time {
			s.pending.TimeReady()
		}
		if res.location || res.time || res.label {
			snap := s.publishSnapshot(&st)
			if s.pub != nil {
				if res.label {
					s.pub.PublishStatus(st.label, snap.Busy)
				}
				if res.location || res.time {
					s.pub.PublishFix(snap)
				}
			}
		}
	}
}

func (s *Service) publishSnapshot(st *fixState) Snapshot {
	snap := st.snapshot(time.Now().UTC(), s.connected.Load(), s.pending.Busy())
	s.last.Store(snap)
	return snap
}

func (s *Service) debugf(format string, args ...any) {
	if s.cfg.Debug {
		log.Printf(format, args...)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

type nopClock struct{}

func (nopClock) SetSystemTime(time.Time) error { return nil }
