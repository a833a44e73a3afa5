package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uartlog/uartlog-go/pkg/uartlog"
	"github.com/uartlog/uartlog-go/pkg/uartlog/classify"
)

func sampleEvents() []uartlog.Event {
	return []uartlog.Event{
		{Time: "12:00:01", Direction: uartlog.RX, Message: "Hello", Delay: 0},
		{Time: "12:00:04", Direction: uartlog.TX, Message: "ERROR overrun", Delay: 3},
		{Time: "12:00:02", Direction: uartlog.RX, Message: "warn: low battery", Delay: -2},
	}
}

func newPrinter(format string) printer {
	return printer{format: format, classifier: classify.Default()}
}

func TestValidFormats(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"table", true},
		{"csv", true},
		{"jsonl", true},
		{"pretty", true},
		{"json", false},
		{"xml", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.valid, validFormats[tt.format])
		})
	}
}

func TestPrint_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newPrinter("table").Print(sampleEvents(), &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"Time", "Direction", "Message", "Delay"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"12:00:01", "RX", "Hello", "0.0"}, strings.Fields(lines[1]))
	assert.True(t, strings.HasSuffix(lines[3], "-2.0"))
	// Columns are aligned.
	assert.Equal(t, strings.Index(lines[0], "Direction"), strings.Index(lines[1], "RX"))
}

func TestPrint_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newPrinter("csv").Print(sampleEvents()[:2], &buf))
	assert.Equal(t, "Time,Direction,Message,Delay\n12:00:01,RX,Hello,0.0\n12:00:04,TX,ERROR overrun,3.0\n", buf.String())
}

func TestPrint_JSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newPrinter("jsonl").Print(sampleEvents(), &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &decoded))
	assert.Equal(t, "12:00:04", decoded["time"])
	assert.Equal(t, "TX", decoded["direction"])
	assert.Equal(t, "ERROR overrun", decoded["message"])
	assert.Equal(t, 3.0, decoded["delay"])
	assert.Equal(t, "error", decoded["category"])
	assert.NotContains(t, decoded, "raw_line")

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "Hello", first["message"])
	_, hasCategory := first["category"]
	assert.False(t, hasCategory)
}

func TestPrint_Pretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newPrinter("pretty").Print(sampleEvents(), &buf))

	want := "[12:00:01]   RX Hello (+0.0s)\n" +
		"[12:00:04] ! TX ERROR overrun (+3.0s)\n" +
		"[12:00:02] ? RX warn: low battery (-2.0s)\n"
	assert.Equal(t, want, buf.String())
}

func TestPrint_PrettyColor(t *testing.T) {
	p := newPrinter("pretty")
	p.color = true

	var buf bytes.Buffer
	require.NoError(t, p.Print(sampleEvents(), &buf))
	lines := strings.Split(buf.String(), "\n")
	assert.False(t, strings.Contains(lines[0], "\x1b["))
	assert.True(t, strings.HasPrefix(lines[1], colorRed))
	assert.True(t, strings.HasPrefix(lines[2], colorYellow))
}

func TestPrint_UnknownFormat(t *testing.T) {
	err := newPrinter("xml").Print(sampleEvents(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFilterOptions(t *testing.T) {
	c := classify.Default()

	opts, err := filterOptions(&outputFlags{directions: []string{"rx"}, categories: []string{"warning", "none"}}, c)
	require.NoError(t, err)

	got := uartlog.Filter(sampleEvents(), opts)
	require.Len(t, got, 2)
	assert.Equal(t, "Hello", got[0].Message)
	assert.Equal(t, "warn: low battery", got[1].Message)

	_, err = filterOptions(&outputFlags{directions: []string{"up"}}, c)
	assert.Error(t, err)
}
