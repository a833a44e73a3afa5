package parser

import (
	"strings"
	"testing"
	"time"
)

// BenchmarkParse_RX benchmarks parsing a received line.
func BenchmarkParse_RX(b *testing.B) {
	line := "12:00:01 >> RX from dev: Hello"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Parse(line, nil)
	}
}

// BenchmarkParse_WithDelay benchmarks parsing with a previous event time.
func BenchmarkParse_WithDelay(b *testing.B) {
	line := "12:00:04 >> TX to dev: World"
	last := time.Date(0, 1, 1, 12, 0, 1, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Parse(line, &last)
	}
}

// BenchmarkParse_NoMatch benchmarks parsing a line that doesn't match.
func BenchmarkParse_NoMatch(b *testing.B) {
	line := "boot: bl2 stage complete"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Parse(line, nil)
	}
}

// BenchmarkParse_LongMessage benchmarks parsing a line with a long payload.
func BenchmarkParse_LongMessage(b *testing.B) {
	line := "12:00:01 RX: " + strings.Repeat("0xAA ", 200)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Parse(line, nil)
	}
}

// BenchmarkParse_InvalidUTF8 benchmarks parsing with invalid UTF-8 sequences.
func BenchmarkParse_InvalidUTF8(b *testing.B) {
	line := "12:00:01 RX: \xff\xfe\xfd"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Parse(line, nil)
	}
}
