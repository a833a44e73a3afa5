package uartlog

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uartlog/uartlog-go/internal/parser"
)

// Session sources reported in SessionSummary.Source.
const (
	SourceFile   = "file"
	SourceReader = "reader"
	SourceSerial = "serial"
	SourceTail   = "tail"
)

// SessionSummary describes a finished read session.
type SessionSummary struct {
	ID     string // unique per session
	Source string // SourceFile, SourceReader, SourceSerial or SourceTail
	Target string // file path or port name

	Lines        int // lines seen, recognized or not
	Accepted     int
	Unmatched    int
	Malformed    int // lines with an invalid timestamp
	DecodeErrors int // serial lines that contained undecodable bytes

	Duration time.Duration
	Err      error // terminal error, if any
}

// SessionObserver receives a summary after every session.
// Implementations must be safe for concurrent use when shared between
// concurrent sessions.
type SessionObserver interface {
	ObserveSession(SessionSummary)
}

// SessionObserverFunc adapts a function to SessionObserver.
type SessionObserverFunc func(SessionSummary)

// ObserveSession calls f(s).
func (f SessionObserverFunc) ObserveSession(s SessionSummary) {
	f(s)
}

// session carries the per-call state threaded across lines: the time of
// the last accepted event and the events accepted so far.
type session struct {
	cfg     *config
	log     *slog.Logger
	summary SessionSummary
	start   time.Time
	last    *time.Time
	events  []Event
}

func newSession(cfg *config, source, target string) *session {
	id := uuid.NewString()
	s := &session{
		cfg: cfg,
		log: cfg.logger.With("session_id", id),
		summary: SessionSummary{
			ID:     id,
			Source: source,
			Target: target,
		},
		start:  time.Now(),
		events: []Event{},
	}
	s.log.Debug("session started", "source", source, "target", target)
	return s
}

// feed parses one line and appends it if accepted. It returns a
// *ParseError only when stopOnError is set.
func (s *session) feed(line string) error {
	s.summary.Lines++
	line = strings.TrimRight(line, "\r\n")

	ev, err := parser.Parse(line, s.last)
	if err != nil {
		s.summary.Malformed++
		if s.cfg.stopOnError {
			return &ParseError{LineNum: s.summary.Lines, Line: line, Err: err}
		}
		s.log.Debug("skipping malformed line", "line_num", s.summary.Lines, "error", err)
		return nil
	}
	if ev == nil {
		s.summary.Unmatched++
		return nil
	}

	if s.cfg.includeRawLine {
		ev.RawLine = line
	}
	at := ev.At
	s.last = &at
	s.events = append(s.events, *ev)
	s.summary.Accepted++
	return nil
}

// finish records the outcome, notifies the observer and returns err.
func (s *session) finish(err error) error {
	s.summary.Duration = time.Since(s.start)
	s.summary.Err = err

	attrs := []any{
		"lines", s.summary.Lines,
		"accepted", s.summary.Accepted,
		"unmatched", s.summary.Unmatched,
		"malformed", s.summary.Malformed,
		"duration", s.summary.Duration,
	}
	if s.summary.DecodeErrors > 0 {
		attrs = append(attrs, "decode_errors", s.summary.DecodeErrors)
	}
	if err != nil {
		s.log.Debug("session failed", append(attrs, "error", err)...)
	} else {
		s.log.Debug("session finished", attrs...)
	}

	if s.cfg.observer != nil {
		s.cfg.observer.ObserveSession(s.summary)
	}
	return err
}
