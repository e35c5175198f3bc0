package transport

import (
	"bufio"
	"errors"
	"net"
	"os"
	"sync"
	"time"
)

// TCP reads newline-delimited NMEA from a networked receiver (e.g. a WiFi
// serial bridge).
type TCP struct {
	addr        string
	dialTimeout time.Duration

	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader
}

func NewTCP(addr string, dialTimeout time.Duration) *TCP {
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	return &TCP{addr: addr, dialTimeout: dialTimeout}
}

func (t *TCP) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", t.addr, t.dialTimeout)
	if err != nil {
		return err
	}
	t.conn = conn
	t.r = bufio.NewReaderSize(conn, MaxLineBytes)
	return nil
}

func (t *TCP) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.r = nil
	return err
}

func (t *TCP) ReadLineUntil(delim byte, timeout time.Duration) ([]byte, error) {
	t.mu.Lock()
	conn := t.conn
	r := t.r
	t.mu.Unlock()
	if conn == nil {
		return nil, ErrClosed
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}

	line := make([]byte, 0, 128)
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, err
		}
		line = append(line, b)
		if b == delim {
			return line, nil
		}
		if len(line) >= MaxLineBytes {
			return nil, ErrOverflow
		}
	}
}
