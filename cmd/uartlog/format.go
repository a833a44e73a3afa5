package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/uartlog/uartlog-go/pkg/uartlog"
	"github.com/uartlog/uartlog-go/pkg/uartlog/classify"
)

// validFormats lists all valid output formats.
var validFormats = map[string]bool{
	"table":  true,
	"csv":    true,
	"jsonl":  true,
	"pretty": true,
}

// ANSI colors for highlighted messages.
const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorReset  = "\x1b[0m"
)

// printer writes events in one output format.
type printer struct {
	format     string
	classifier *classify.Classifier
	color      bool
}

// Print writes all events to out.
func (p printer) Print(events []uartlog.Event, out io.Writer) error {
	switch p.format {
	case "table":
		return outputTable(events, out)
	case "csv":
		return uartlog.WriteCSV(out, events)
	case "jsonl":
		for _, ev := range events {
			if err := p.outputJSON(ev, out); err != nil {
				return err
			}
		}
		return nil
	case "pretty":
		for _, ev := range events {
			if err := p.outputPretty(ev, out); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

func outputTable(events []uartlog.Event, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Time\tDirection\tMessage\tDelay")
	for _, ev := range events {
		row := ev.Row()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3])
	}
	return tw.Flush()
}

// jsonEvent is the jsonl shape: the event plus its category.
type jsonEvent struct {
	uartlog.Event
	Category classify.Category `json:"category,omitempty"`
}

func (p printer) outputJSON(ev uartlog.Event, out io.Writer) error {
	data, err := json.Marshal(jsonEvent{Event: ev, Category: p.classifier.Classify(ev.Message)})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// outputPretty writes an event in human-readable format. Errors are
// marked with "!", warnings with "?".
func (p printer) outputPretty(ev uartlog.Event, out io.Writer) error {
	marker, color := " ", ""
	switch p.classifier.Classify(ev.Message) {
	case classify.Error:
		marker, color = "!", colorRed
	case classify.Warning:
		marker, color = "?", colorYellow
	}

	delay := uartlog.FormatDelay(ev.Delay)
	if ev.Delay >= 0 {
		delay = "+" + delay
	}

	line := fmt.Sprintf("[%s] %s %s %s (%ss)", ev.Time, marker, ev.Direction, ev.Message, delay)
	if p.color && color != "" {
		line = color + line + colorReset
	}
	_, err := fmt.Fprintln(out, line)
	return err
}
