//go:build linux

package pps

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

func openLine(cfg Config, onPulse func(now time.Time)) (func() error, error) {
	chipPath := cfg.Chip
	if chipPath == "" {
		chipPath = "/dev/gpiochip0"
	}

	chip, err := gpiocdev.NewChip(chipPath)
	if err != nil {
		return nil, fmt.Errorf("pps: open %s: %w", chipPath, err)
	}

	line, err := chip.RequestLine(cfg.Line,
		gpiocdev.AsInput,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithConsumer("gpsnmead-pps"),
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			onPulse(time.Now().UTC())
		}))
	if err != nil {
		_ = chip.Close()
		return nil, fmt.Errorf("pps: request line %d: %w", cfg.Line, err)
	}

	return func() error {
		_ = line.Close()
		return chip.Close()
	}, nil
}
