package uartlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/nxadm/tail"

	"github.com/uartlog/uartlog-go/internal/safefile"
)

// Tail follows a log file that another program is appending to, such as a
// terminal emulator's capture log, and returns the events read within
// duration.
//
// By default only lines appended after Tail starts are read; use
// WithFromStart(true) to include the existing content. The same rules as
// Capture apply: the deadline is fixed when Tail starts, cancelling ctx
// returns the partial events with ctx.Err(), and the file is released on
// every path. A missing or non-regular file returns a *SourceError matching
// ErrSourceUnavailable.
func Tail(ctx context.Context, path string, duration time.Duration, opts ...Option) ([]Event, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidCapture, duration)
	}

	s := newSession(cfg, SourceTail, path)

	// Reject devices and FIFOs up front; tail would block on them.
	f, _, err := safefile.OpenRegular(path)
	if err != nil {
		return nil, s.finish(&SourceError{Op: OpTail, Path: path, Err: err})
	}
	_ = f.Close()

	tcfg := tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Poll:      cfg.tailPoll,
		Logger:    slog.NewLogLogger(s.log.Handler(), slog.LevelDebug),
	}
	if !cfg.fromStart {
		tcfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, tcfg)
	if err != nil {
		return nil, s.finish(&SourceError{Op: OpTail, Path: path, Err: err})
	}
	s.log.Debug("started tailing", "path", path, "from_start", cfg.fromStart)

	err = s.follow(ctx, t, duration)

	if serr := t.Stop(); serr != nil {
		s.log.Debug("stopping tailer", "path", path, "error", serr)
	}
	t.Cleanup()

	return s.events, s.finish(err)
}

func (s *session) follow(ctx context.Context, t *tail.Tail, duration time.Duration) error {
	timer := time.NewTimer(time.Until(s.start.Add(duration)))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				return &SourceError{Op: OpTail, Path: s.summary.Target, Err: line.Err}
			}
			text := line.Text
			if valid := strings.ToValidUTF8(text, ""); valid != text {
				s.summary.DecodeErrors++
				text = valid
			}
			if err := s.feed(text); err != nil {
				return err
			}
		}
	}
}
