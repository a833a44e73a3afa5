package uartlog

import (
	"context"
	"fmt"
	"time"

	"github.com/uartlog/uartlog-go/internal/serialport"
)

// Capture records a live serial session for the given duration and returns
// the events received, in arrival order.
//
// The port is opened once, read one line at a time with a per-read timeout
// (WithReadTimeout), and always closed before Capture returns. A capture
// never runs for more than duration plus one read timeout.
//
// Errors:
//   - invalid arguments match ErrInvalidCapture; the port is not touched
//   - a port that cannot be opened returns a *SourceError matching
//     ErrPortUnavailable and no events
//   - a read failure returns the events captured so far and a *SourceError
//     matching ErrPortUnavailable
//   - cancelling ctx returns the events captured so far and ctx.Err()
//
// Received bytes that are not valid text in the configured encoding are
// dropped; the rest of the line is still parsed.
func Capture(ctx context.Context, port string, baudRate int, duration time.Duration, opts ...Option) ([]Event, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := validateCapture(port, baudRate, duration); err != nil {
		return nil, err
	}

	dec, err := serialport.NewDecoder(cfg.encoding)
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	s := newSession(cfg, SourceSerial, port)

	sc := cfg.serial
	sc.Name = port
	sc.BaudRate = baudRate
	if sc.Logger == nil {
		sc.Logger = s.log
	}

	p, err := cfg.opener(sc)
	if err != nil {
		return nil, s.finish(&SourceError{Op: OpOpenPort, Path: port, Err: err})
	}
	s.log.Debug("port opened", "port", port, "baud_rate", baudRate, "duration", duration)
	defer func() {
		if cerr := p.Close(); cerr != nil {
			s.log.Warn("closing port", "port", port, "error", cerr)
			return
		}
		s.log.Debug("port closed", "port", port)
	}()

	// The capture window starts once the port is open.
	err = s.capture(ctx, p, dec, time.Now().Add(duration))
	return s.events, s.finish(err)
}

func validateCapture(port string, baudRate int, duration time.Duration) error {
	switch {
	case port == "":
		return fmt.Errorf("%w: port name is empty", ErrInvalidCapture)
	case baudRate <= 0:
		return fmt.Errorf("%w: baud rate must be positive, got %d", ErrInvalidCapture, baudRate)
	case duration <= 0:
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidCapture, duration)
	}
	return nil
}

// capture runs the bounded read loop. Each read waits no longer than the
// time left until the deadline.
func (s *session) capture(ctx context.Context, p Port, dec *serialport.Decoder, deadline time.Time) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}

		raw, err := p.ReadLine(min(s.cfg.readTimeout, remaining))
		if err != nil {
			return &SourceError{Op: OpReadPort, Path: s.summary.Target, Err: err}
		}
		if raw == nil {
			continue
		}

		text, ok := dec.Decode(raw)
		if !ok {
			s.summary.DecodeErrors++
			s.log.Debug("dropped undecodable bytes", "encoding", dec.Name(), "error", ErrDecode)
		}
		if err := s.feed(text); err != nil {
			return err
		}
	}
}
