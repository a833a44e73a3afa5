// Package api serves the uartlog readers over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uartlog/uartlog-go/pkg/uartlog"
	"github.com/uartlog/uartlog-go/pkg/uartlog/classify"
)

// Defaults applied to zero Options fields.
const (
	DefaultMaxCaptureDuration = 5 * time.Minute
	DefaultMaxUploadBytes     = 16 * 1024 * 1024
)

// Options configures the HTTP server wiring.
type Options struct {
	Logger *slog.Logger

	// APIToken protects the capture endpoint when set.
	APIToken string

	MaxCaptureDuration time.Duration
	MaxUploadBytes     int64

	// Classifier tags messages in JSON responses. Defaults to classify.Default().
	Classifier *classify.Classifier

	// ReaderOptions are passed to every reader call (serial framing,
	// encoding, read timeout).
	ReaderOptions []uartlog.Option

	// Observer receives every session summary, e.g. metrics.Observer.
	Observer uartlog.SessionObserver
}

// Server wraps the Gin engine and associated configuration.
type Server struct {
	engine *gin.Engine
	log    *slog.Logger
	opts   Options
	ports  *portLocks
}

// NewServer constructs a Server with all HTTP routes configured.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxCaptureDuration <= 0 {
		opts.MaxCaptureDuration = DefaultMaxCaptureDuration
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.Default()
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		log:   opts.Logger,
		opts:  opts,
		ports: newPortLocks(),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestIDMiddleware(), metricsMiddleware(), requestLogger(s.log))

	engine.GET("/healthz", s.health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	v1.POST("/parse", s.parse)
	v1.GET("/ports", s.listPorts)

	protected := v1.Group("/")
	protected.Use(authMiddleware(opts.APIToken))
	protected.POST("/capture", s.capture)

	s.engine = engine
	return s
}

// Engine exposes the underlying Gin engine for advanced use (testing, etc.).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.engine,
		ReadTimeout: 15 * time.Second,
		// Captures hold the response open for their whole duration.
		WriteTimeout: s.opts.MaxCaptureDuration + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
