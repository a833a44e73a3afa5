package uartlog

import (
	"errors"
	"fmt"

	"github.com/uartlog/uartlog-go/internal/parser"
)

// Sentinel errors.
var (
	// ErrSourceUnavailable indicates a log file could not be opened or read.
	ErrSourceUnavailable = errors.New("log source unavailable")

	// ErrPortUnavailable indicates a serial port could not be opened, or
	// failed while it was being read.
	ErrPortUnavailable = errors.New("serial port unavailable")

	// ErrMalformedTimestamp indicates a line with the shape of an event whose
	// timestamp is not a valid time of day. Such lines are skipped unless
	// WithStopOnError is set.
	ErrMalformedTimestamp = parser.ErrMalformedTimestamp

	// ErrDecode indicates received serial bytes that were not valid text.
	// It is counted and logged, never returned.
	ErrDecode = errors.New("undecodable serial data")

	// ErrInvalidCapture indicates invalid capture arguments.
	ErrInvalidCapture = errors.New("invalid capture arguments")
)

// SourceOp identifies the operation that failed on a log source.
type SourceOp string

// Source operations.
const (
	OpOpenFile SourceOp = "open file"
	OpReadFile SourceOp = "read file"
	OpOpenPort SourceOp = "open port"
	OpReadPort SourceOp = "read port"
	OpTail     SourceOp = "tail file"
)

// SourceError reports a terminal failure to access a log source.
// errors.Is matches both the underlying cause and ErrSourceUnavailable or
// ErrPortUnavailable, depending on Op.
type SourceError struct {
	Op   SourceOp
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the sentinel for the operation and the underlying cause.
func (e *SourceError) Unwrap() []error {
	return []error{e.kind(), e.Err}
}

func (e *SourceError) kind() error {
	switch e.Op {
	case OpOpenPort, OpReadPort:
		return ErrPortUnavailable
	default:
		return ErrSourceUnavailable
	}
}

// ParseError reports a line that could not be parsed.
// It is only returned when WithStopOnError is set.
type ParseError struct {
	LineNum int // 1-based line number within the session
	Line    string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.LineNum, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
