package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uartlog/uartlog-go/pkg/uartlog"
)

const sampleLog = "12:00:01 >> RX from dev: Hello\nnoise\n12:00:04 >> TX to dev: ERROR overrun\n"

func init() {
	gin.SetMode(gin.TestMode)
}

// scriptedPort returns its lines once, then times out until closed.
type scriptedPort struct {
	mu     sync.Mutex
	lines  []string
	closed bool
}

func (p *scriptedPort) ReadLine(timeout time.Duration) ([]byte, error) {
	p.mu.Lock()
	if len(p.lines) > 0 {
		line := p.lines[0]
		p.lines = p.lines[1:]
		p.mu.Unlock()
		return []byte(line), nil
	}
	p.mu.Unlock()
	time.Sleep(timeout)
	return nil, nil
}

func (p *scriptedPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	opts.ReaderOptions = append([]uartlog.Option{uartlog.WithReadTimeout(20 * time.Millisecond)}, opts.ReaderOptions...)
	return NewServer(opts)
}

func do(s *Server, method, target string, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, http.MethodGet, "/healthz", "", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestParse_JSON(t *testing.T) {
	var observed []uartlog.SessionSummary
	s := newTestServer(t, Options{
		Observer: uartlog.SessionObserverFunc(func(sum uartlog.SessionSummary) { observed = append(observed, sum) }),
	})

	rec := do(s, http.MethodPost, "/v1/parse", sampleLog)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp eventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "Hello", resp.Events[0].Message)
	assert.Empty(t, resp.Events[0].Category)
	assert.Equal(t, uartlog.TX, resp.Events[1].Direction)
	assert.InDelta(t, 3.0, resp.Events[1].Delay, 1e-9)
	assert.Equal(t, "error", string(resp.Events[1].Category))

	assert.Equal(t, uartlog.SourceReader, resp.Session.Source)
	assert.Equal(t, 3, resp.Session.Lines)
	assert.Equal(t, 1, resp.Session.Unmatched)
	assert.NotEmpty(t, resp.Session.ID)
	assert.Equal(t, resp.Session.ID, rec.Header().Get("X-Session-ID"))

	require.Len(t, observed, 1)
	assert.Equal(t, resp.Session.ID, observed[0].ID)
}

func TestParse_CSV(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, http.MethodPost, "/v1/parse?format=csv&sort=Delay&desc=true", sampleLog)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t,
		"Time,Direction,Message,Delay\n12:00:04,TX,ERROR overrun,3.0\n12:00:01,RX,Hello,0.0\n",
		rec.Body.String())
}

func TestParse_DirectionFilter(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, http.MethodPost, "/v1/parse?direction=RX", sampleLog)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp eventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 1)
	assert.Equal(t, uartlog.RX, resp.Events[0].Direction)
}

func TestParse_UnknownSortColumn(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, http.MethodPost, "/v1/parse?sort=Nope", sampleLog)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParse_Empty(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := do(s, http.MethodPost, "/v1/parse", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp eventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Events)
	assert.Empty(t, resp.Events)
}

func TestParse_TooLarge(t *testing.T) {
	s := newTestServer(t, Options{MaxUploadBytes: 16})

	rec := do(s, http.MethodPost, "/v1/parse", sampleLog)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCapture(t *testing.T) {
	port := &scriptedPort{lines: []string{"12:00:01 RX: ping", "12:00:02 TX: pong"}}
	var gotCfg uartlog.SerialConfig
	s := newTestServer(t, Options{
		ReaderOptions: []uartlog.Option{uartlog.WithPortOpener(func(cfg uartlog.SerialConfig) (uartlog.Port, error) {
			gotCfg = cfg
			return port, nil
		})},
	})

	rec := do(s, http.MethodPost, "/v1/capture", `{"port":"COM3","baud_rate":9600,"duration_seconds":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp eventsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)
	assert.InDelta(t, 1.0, resp.Events[1].Delay, 1e-9)
	assert.Equal(t, uartlog.SourceSerial, resp.Session.Source)
	assert.Equal(t, "COM3", resp.Session.Target)
	assert.Equal(t, "COM3", gotCfg.Name)
	assert.Equal(t, 9600, gotCfg.BaudRate)
	assert.True(t, port.closed)
}

func TestCapture_BadRequest(t *testing.T) {
	s := newTestServer(t, Options{MaxCaptureDuration: time.Minute})

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{`},
		{name: "missing port", body: `{"baud_rate":9600,"duration_seconds":1}`},
		{name: "zero baud", body: `{"port":"COM3","baud_rate":0,"duration_seconds":1}`},
		{name: "negative duration", body: `{"port":"COM3","baud_rate":9600,"duration_seconds":-1}`},
		{name: "too long", body: `{"port":"COM3","baud_rate":9600,"duration_seconds":3600}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/v1/capture", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCapture_PortUnavailable(t *testing.T) {
	s := newTestServer(t, Options{
		ReaderOptions: []uartlog.Option{uartlog.WithPortOpener(func(uartlog.SerialConfig) (uartlog.Port, error) {
			return nil, errors.New("no such device")
		})},
	})

	rec := do(s, http.MethodPost, "/v1/capture", `{"port":"COM9","baud_rate":9600,"duration_seconds":60}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no such device")
}

func TestCapture_BusyPort(t *testing.T) {
	opened := make(chan struct{})
	var once sync.Once
	s := newTestServer(t, Options{
		ReaderOptions: []uartlog.Option{uartlog.WithPortOpener(func(uartlog.SerialConfig) (uartlog.Port, error) {
			once.Do(func() { close(opened) })
			return &scriptedPort{}, nil
		})},
	})

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- do(s, http.MethodPost, "/v1/capture", `{"port":"COM3","baud_rate":9600,"duration_seconds":1}`)
	}()

	select {
	case <-opened:
	case <-time.After(5 * time.Second):
		t.Fatal("first capture did not open the port")
	}

	rec := do(s, http.MethodPost, "/v1/capture", `{"port":"COM3","baud_rate":9600,"duration_seconds":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// A different port is not blocked.
	other := do(s, http.MethodPost, "/v1/capture", `{"port":"COM4","baud_rate":9600,"duration_seconds":1}`)
	assert.Equal(t, http.StatusOK, other.Code)

	first := <-done
	assert.Equal(t, http.StatusOK, first.Code)

	// The lock is released afterwards.
	again := do(s, http.MethodPost, "/v1/capture", `{"port":"COM3","baud_rate":9600,"duration_seconds":1}`)
	assert.Equal(t, http.StatusOK, again.Code)
}

func TestCapture_Auth(t *testing.T) {
	s := newTestServer(t, Options{
		APIToken: "secret",
		ReaderOptions: []uartlog.Option{uartlog.WithPortOpener(func(uartlog.SerialConfig) (uartlog.Port, error) {
			return &scriptedPort{}, nil
		})},
	})
	body := `{"port":"COM3","baud_rate":9600,"duration_seconds":1}`

	rec := do(s, http.MethodPost, "/v1/capture", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(s, http.MethodPost, "/v1/capture", body, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Parsing stays open.
	rec = do(s, http.MethodPost, "/v1/parse", sampleLog)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})
	do(s, http.MethodGet, "/healthz", "")

	rec := do(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("uartlog_http_requests_total")))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(uartlog.ErrInvalidCapture))
	assert.Equal(t, http.StatusBadRequest, statusFor(&uartlog.SourceError{Op: uartlog.OpReadFile, Err: errors.New("x")}))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(&uartlog.SourceError{Op: uartlog.OpReadPort, Err: errors.New("x")}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("x")))
}

func TestPortLocks(t *testing.T) {
	l := newPortLocks()
	assert.True(t, l.tryAcquire("COM1"))
	assert.False(t, l.tryAcquire("COM1"))
	assert.True(t, l.tryAcquire("COM2"))
	l.release("COM1")
	assert.True(t, l.tryAcquire("COM1"))
}
