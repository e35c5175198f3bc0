package transport

import (
	"io"
	"sync"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
)

// Serial reads NMEA directly from a UART GPS receiver.
type Serial struct {
	device string
	baud   uint

	mu   sync.Mutex
	port io.ReadWriteCloser
}

func NewSerial(device string, baud uint) *Serial {
	if baud == 0 {
		baud = 9600
	}
	return &Serial{device: device, baud: baud}
}

func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return nil
	}
	port, err := serial.Open(serial.OpenOptions{
		PortName:   s.device,
		BaudRate:   s.baud,
		DataBits:   8,
		StopBits:   1,
		ParityMode: serial.PARITY_NONE,
		// Return from Read after a short quiet gap so the per-line timeout
		// below stays in control.
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	})
	if err != nil {
		return err
	}
	s.port = port
	return nil
}

func (s *Serial) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

func (s *Serial) ReadLineUntil(delim byte, timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return nil, ErrClosed
	}

	deadline := time.Now().Add(timeout)
	line := make([]byte, 0, 128)
	one := make([]byte, 1)
	for {
		if time.Now().After(deadline) {
			return nil, ErrTimeout
		}
		n, err := port.Read(one)
		if n == 1 {
			line = append(line, one[0])
			if one[0] == delim {
				return line, nil
			}
			if len(line) >= MaxLineBytes {
				return nil, ErrOverflow
			}
			continue
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		// Quiet gap; keep polling until the deadline.
	}
}
