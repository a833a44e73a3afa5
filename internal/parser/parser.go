// Package parser provides UART log line parsing.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uartlog/uartlog-go/pkg/uartlog/event"
)

// ErrMalformedTimestamp is returned when a line has the shape of an event
// but its timestamp digits are not a valid time of day.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// Parse parses a UART log line into an Event.
//
// last is the time of the previous accepted event in the same session, or
// nil if there is none. Parse does not keep state between calls; callers
// thread last themselves.
//
// Returns:
//   - (*Event, nil): Successfully parsed
//   - (nil, nil): Not a recognized line
//   - (nil, error): Timestamp present but invalid (wraps ErrMalformedTimestamp)
func Parse(line string, last *time.Time) (*event.Event, error) {
	// Trim trailing CR/LF for Windows CRLF compatibility
	line = strings.TrimRight(line, "\r\n")

	match := linePattern.FindStringSubmatch(line)
	if match == nil {
		return nil, nil
	}

	at, err := time.Parse(event.TimeLayout, match[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedTimestamp, match[1])
	}

	ev := &event.Event{
		Time:      match[1],
		Direction: event.Direction(match[2]),
		Message:   strings.TrimSpace(match[3]),
		At:        at,
	}
	if last != nil {
		// Out-of-order lines yield a negative delay; it is kept as is.
		ev.Delay = at.Sub(*last).Seconds()
	}
	return ev, nil
}
