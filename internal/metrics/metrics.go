// Package metrics exports Prometheus metrics for read sessions.
package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/uartlog/uartlog-go/pkg/uartlog"
)

var (
	sessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uartlog_sessions_total",
		Help: "Read sessions grouped by source and outcome",
	}, []string{"source", "status"})

	sessionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uartlog_session_duration_seconds",
		Help:    "Duration of read sessions",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
	}, []string{"source"})

	linesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uartlog_lines_total",
		Help: "Lines read grouped by source and parse result",
	}, []string{"source", "result"})

	decodeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uartlog_decode_errors_total",
		Help: "Serial lines that contained undecodable bytes",
	}, []string{"source"})
)

// Session outcomes.
const (
	StatusOK        = "ok"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Observer records every session it is given. Pass it to uartlog readers
// with uartlog.WithObserver.
var Observer uartlog.SessionObserver = uartlog.SessionObserverFunc(ObserveSession)

// ObserveSession records the counters and duration of a finished session.
func ObserveSession(s uartlog.SessionSummary) {
	source := s.Source
	if source == "" {
		source = "unknown"
	}

	sessionsTotal.WithLabelValues(source, Status(s.Err)).Inc()
	sessionDuration.WithLabelValues(source).Observe(s.Duration.Seconds())

	linesTotal.WithLabelValues(source, "accepted").Add(float64(s.Accepted))
	linesTotal.WithLabelValues(source, "unmatched").Add(float64(s.Unmatched))
	linesTotal.WithLabelValues(source, "malformed").Add(float64(s.Malformed))
	if s.DecodeErrors > 0 {
		decodeErrorsTotal.WithLabelValues(source).Add(float64(s.DecodeErrors))
	}
}

// Status maps a session error to an outcome label.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCancelled
	default:
		return StatusFailed
	}
}
