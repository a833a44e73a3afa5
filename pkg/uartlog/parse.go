package uartlog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/uartlog/uartlog-go/internal/parser"
	"github.com/uartlog/uartlog-go/internal/safefile"
)

// ParseLine parses a single UART log line into an Event.
//
// last is the time of the previous accepted event in the same session, or
// nil for the first one. The returned Event's Delay is measured from it.
//
// Return values:
//   - (*Event, nil): Successfully parsed event
//   - (nil, nil): Line is not a recognized UART record (not an error)
//   - (nil, error): Line has the shape of a record but its timestamp is
//     invalid (matches ErrMalformedTimestamp)
//
// Example:
//
//	var last *time.Time
//	for _, line := range lines {
//	    ev, err := uartlog.ParseLine(line, last)
//	    if err != nil || ev == nil {
//	        continue
//	    }
//	    last = &ev.At
//	    fmt.Println(ev.Time, ev.Direction, ev.Message, ev.Delay)
//	}
func ParseLine(line string, last *time.Time) (*Event, error) {
	return parser.Parse(line, last)
}

// ParseFile reads a whole log file and returns its events in file order.
//
// Only regular files are accepted. Failure to open or read the file
// returns a *SourceError matching ErrSourceUnavailable and no events.
// Lines with invalid timestamps are skipped unless WithStopOnError is set.
// An empty file yields an empty slice and a nil error.
//
// Calling ParseFile twice on an unchanged file returns identical results.
func ParseFile(ctx context.Context, path string, opts ...Option) ([]Event, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	s := newSession(cfg, SourceFile, path)

	data, err := safefile.ReadFile(path, cfg.maxFileBytes)
	if err != nil {
		op := OpOpenFile
		if errors.Is(err, safefile.ErrTooLarge) || errors.Is(err, safefile.ErrRead) {
			op = OpReadFile
		}
		return nil, s.finish(&SourceError{Op: op, Path: path, Err: err})
	}

	if err := s.readLines(ctx, bytes.NewReader(data), OpReadFile, path); err != nil {
		return s.events, s.finish(err)
	}
	return s.events, s.finish(nil)
}

// ParseReader parses log lines from r until EOF.
//
// It behaves like ParseFile for an already opened source: a read error
// returns the events parsed so far together with a *SourceError.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) ([]Event, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	s := newSession(cfg, SourceReader, "")
	if err := s.readLines(ctx, r, OpReadFile, ""); err != nil {
		return s.events, s.finish(err)
	}
	return s.events, s.finish(nil)
}

// readLines feeds every line of r to the session. The final line does not
// need a terminating newline.
func (s *session) readLines(ctx context.Context, r io.Reader, op SourceOp, path string) error {
	br := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, readErr := br.ReadString('\n')
		if line != "" {
			if err := s.feed(line); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return &SourceError{Op: op, Path: path, Err: readErr}
		}
	}
}
