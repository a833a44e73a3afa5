package uartlog

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/uartlog/uartlog-go/pkg/uartlog/event"
)

// Columns are the output columns, in order.
var Columns = []string{"Time", "Direction", "Message", "Delay"}

// ErrUnknownColumn is returned by SortBy for a column not in Columns.
var ErrUnknownColumn = errors.New("unknown column")

// WriteCSV writes events as CSV with a header row of Columns.
func WriteCSV(w io.Writer, events []Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, ev := range events {
		if err := cw.Write(ev.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SortBy sorts events in place by the named column (case-insensitive).
// The sort is stable, so events with equal keys keep their source order.
func SortBy(events []Event, column string, desc bool) error {
	compare, err := comparator(column)
	if err != nil {
		return err
	}
	if desc {
		asc := compare
		compare = func(a, b Event) int { return asc(b, a) }
	}
	slices.SortStableFunc(events, compare)
	return nil
}

func comparator(column string) (func(a, b Event) int, error) {
	switch strings.ToLower(column) {
	case "time":
		// HH:MM:SS compares correctly as a string.
		return func(a, b Event) int { return strings.Compare(a.Time, b.Time) }, nil
	case "direction":
		return func(a, b Event) int { return strings.Compare(string(a.Direction), string(b.Direction)) }, nil
	case "message":
		return func(a, b Event) int { return strings.Compare(a.Message, b.Message) }, nil
	case "delay":
		return func(a, b Event) int { return cmp.Compare(a.Delay, b.Delay) }, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownColumn, column, strings.Join(Columns, ", "))
	}
}

// FilterOptions selects events. Zero values match everything.
type FilterOptions struct {
	// Directions keeps only events with one of these directions.
	Directions []Direction

	// Contains keeps only events whose message contains this text,
	// ignoring case.
	Contains string

	// Match is an additional predicate, e.g. a message classifier.
	Match func(Event) bool
}

// Filter returns the events selected by opts, in their original order.
// The input slice is not modified.
func Filter(events []Event, opts FilterOptions) []Event {
	needle := strings.ToLower(opts.Contains)
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if len(opts.Directions) > 0 && !slices.Contains(opts.Directions, ev.Direction) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(ev.Message), needle) {
			continue
		}
		if opts.Match != nil && !opts.Match(ev) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// FormatDelay formats a delay in seconds the way WriteCSV does.
func FormatDelay(d float64) string {
	return event.FormatDelay(d)
}
