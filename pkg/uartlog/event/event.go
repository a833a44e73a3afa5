// Package event defines the record produced for every accepted UART log line.
package event

import (
	"strconv"
	"strings"
	"time"
)

// Direction is the direction of a UART transfer.
type Direction string

// Transfer directions.
const (
	RX Direction = "RX"
	TX Direction = "TX"
)

// TimeLayout is the layout of Event.Time ("HH:MM:SS").
const TimeLayout = "15:04:05"

// Event is one parsed UART log line.
type Event struct {
	// Time is the time of day exactly as it appeared in the line.
	Time string `json:"time"`

	// Direction is RX or TX.
	Direction Direction `json:"direction"`

	// Message is the payload after the ": " separator, trimmed.
	Message string `json:"message"`

	// Delay is the signed number of seconds since the previous accepted
	// event of the same session. Zero for the first event.
	Delay float64 `json:"delay"`

	// At is Time parsed as a time of day on the zero date.
	At time.Time `json:"-"`

	// RawLine is the original line. Only set when requested.
	RawLine string `json:"raw_line,omitempty"`
}

// Row returns the event's fields in column order: Time, Direction,
// Message, Delay.
func (e Event) Row() []string {
	return []string{e.Time, string(e.Direction), e.Message, FormatDelay(e.Delay)}
}

// FormatDelay formats a delay in seconds with at least one decimal place,
// e.g. "0.0", "3.0" or "-5.5".
func FormatDelay(d float64) string {
	s := strconv.FormatFloat(d, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
