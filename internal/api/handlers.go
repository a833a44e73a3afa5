package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uartlog/uartlog-go/pkg/uartlog"
	"github.com/uartlog/uartlog-go/pkg/uartlog/classify"
)

type errorResponse struct {
	Error string `json:"error"`
}

type eventView struct {
	Time      string            `json:"time"`
	Direction uartlog.Direction `json:"direction"`
	Message   string            `json:"message"`
	Delay     float64           `json:"delay"`
	Category  classify.Category `json:"category,omitempty"`
}

type sessionView struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target,omitempty"`
	Lines        int    `json:"lines"`
	Accepted     int    `json:"accepted"`
	Unmatched    int    `json:"unmatched"`
	Malformed    int    `json:"malformed"`
	DecodeErrors int    `json:"decode_errors"`
	DurationMS   int64  `json:"duration_ms"`
}

type eventsResponse struct {
	Session sessionView `json:"session"`
	Events  []eventView `json:"events"`
}

type captureRequest struct {
	Port            string `json:"port" binding:"required"`
	BaudRate        int    `json:"baud_rate" binding:"required,gt=0"`
	DurationSeconds int    `json:"duration_seconds" binding:"required,gt=0"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listPorts(c *gin.Context) {
	ports, err := uartlog.ListPorts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if ports == nil {
		ports = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"ports": ports})
}

// parse handles POST /v1/parse. The request body is the log text.
// Query parameters: format=csv, sort=<column>, desc=true, direction=RX|TX.
func (s *Server) parse(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	var summary uartlog.SessionSummary
	events, err := uartlog.ParseReader(c.Request.Context(), body, s.readerOptions(c, &summary)...)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("body exceeds %d bytes", s.opts.MaxUploadBytes),
			})
			return
		}
		s.fail(c, err)
		return
	}

	s.respond(c, summary, events)
}

// capture handles POST /v1/capture.
func (s *Server) capture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	duration := time.Duration(req.DurationSeconds) * time.Second
	if duration > s.opts.MaxCaptureDuration {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("duration_seconds exceeds maximum of %d", int(s.opts.MaxCaptureDuration/time.Second)),
		})
		return
	}

	if !s.ports.tryAcquire(req.Port) {
		c.JSON(http.StatusConflict, errorResponse{Error: fmt.Sprintf("port %s is busy", req.Port)})
		return
	}
	defer s.ports.release(req.Port)

	var summary uartlog.SessionSummary
	events, err := uartlog.Capture(c.Request.Context(), req.Port, req.BaudRate, duration, s.readerOptions(c, &summary)...)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, summary, events)
}

// readerOptions returns the configured options plus a logger tagged with
// the request ID and an observer that records the session summary.
func (s *Server) readerOptions(c *gin.Context, summary *uartlog.SessionSummary) []uartlog.Option {
	requestID, _ := c.Get(requestIDKey)
	opts := make([]uartlog.Option, 0, len(s.opts.ReaderOptions)+2)
	opts = append(opts, s.opts.ReaderOptions...)
	opts = append(opts,
		uartlog.WithLogger(s.log.With("request_id", requestID)),
		uartlog.WithObserver(uartlog.SessionObserverFunc(func(sum uartlog.SessionSummary) {
			*summary = sum
			if s.opts.Observer != nil {
				s.opts.Observer.ObserveSession(sum)
			}
		})),
	)
	return opts
}

func (s *Server) respond(c *gin.Context, summary uartlog.SessionSummary, events []uartlog.Event) {
	if dir := c.Query("direction"); dir != "" {
		events = uartlog.Filter(events, uartlog.FilterOptions{Directions: []uartlog.Direction{uartlog.Direction(dir)}})
	}
	if col := c.Query("sort"); col != "" {
		desc, _ := strconv.ParseBool(c.Query("desc"))
		if err := uartlog.SortBy(events, col, desc); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
	}

	c.Header("X-Session-ID", summary.ID)

	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := uartlog.WriteCSV(c.Writer, events); err != nil {
			s.log.Warn("writing csv response", "error", err)
		}
		return
	}

	views := make([]eventView, len(events))
	for i, ev := range events {
		views[i] = eventView{
			Time:      ev.Time,
			Direction: ev.Direction,
			Message:   ev.Message,
			Delay:     ev.Delay,
			Category:  s.opts.Classifier.Classify(ev.Message),
		}
	}
	c.JSON(http.StatusOK, eventsResponse{
		Session: sessionView{
			ID:           summary.ID,
			Source:       summary.Source,
			Target:       summary.Target,
			Lines:        summary.Lines,
			Accepted:     summary.Accepted,
			Unmatched:    summary.Unmatched,
			Malformed:    summary.Malformed,
			DecodeErrors: summary.DecodeErrors,
			DurationMS:   summary.Duration.Milliseconds(),
		},
		Events: views,
	})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Warn("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

// statusFor maps reader errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, uartlog.ErrInvalidCapture),
		errors.Is(err, uartlog.ErrSourceUnavailable),
		errors.Is(err, uartlog.ErrMalformedTimestamp):
		return http.StatusBadRequest
	case errors.Is(err, uartlog.ErrPortUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// portLocks ensures a serial port is used by at most one capture at a time.
type portLocks struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func newPortLocks() *portLocks {
	return &portLocks{busy: make(map[string]struct{})}
}

func (l *portLocks) tryAcquire(port string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.busy[port]; ok {
		return false
	}
	l.busy[port] = struct{}{}
	return true
}

func (l *portLocks) release(port string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.busy, port)
}
