package uartlog

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/uartlog/uartlog-go/internal/serialport"
)

// Defaults.
const (
	// DefaultReadTimeout bounds each serial read so the capture loop can
	// re-check its deadline even when the device is silent.
	DefaultReadTimeout = time.Second

	// DefaultMaxFileBytes is the largest log file ParseFile will read.
	DefaultMaxFileBytes = 64 * 1024 * 1024
)

// Option configures ParseFile, ParseReader, Capture and Tail using the
// functional options pattern. Options that do not apply to an operation
// are ignored by it.
type Option func(*config)

// config holds internal configuration for a session.
type config struct {
	logger         *slog.Logger
	observer       SessionObserver
	includeRawLine bool
	stopOnError    bool
	maxFileBytes   int64

	// serial capture
	readTimeout time.Duration
	serial      SerialConfig
	encoding    string
	opener      PortOpener

	// tail
	fromStart bool
	tailPoll  bool
}

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// defaultConfig returns a config with sensible defaults.
func defaultConfig() *config {
	return &config{
		logger:       discardLogger,
		maxFileBytes: DefaultMaxFileBytes,
		readTimeout:  DefaultReadTimeout,
		encoding:     serialport.DefaultEncoding,
		opener:       serialport.Open,
	}
}

// applyOptions applies functional options to a config.
func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// validate checks for invalid option values.
func (c *config) validate() error {
	if c.readTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", c.readTimeout)
	}
	if c.maxFileBytes < 0 {
		return fmt.Errorf("max file bytes must be non-negative, got %d", c.maxFileBytes)
	}
	return nil
}

// WithLogger sets a logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger == nil {
			logger = discardLogger
		}
		c.logger = logger
	}
}

// WithObserver registers an observer that receives a summary after every
// session, successful or not.
func WithObserver(o SessionObserver) Option {
	return func(c *config) {
		c.observer = o
	}
}

// WithIncludeRawLine includes the original log line in Event.RawLine.
// Default: false.
func WithIncludeRawLine(include bool) Option {
	return func(c *config) {
		c.includeRawLine = include
	}
}

// WithStopOnError stops on the first line with a malformed timestamp and
// returns a *ParseError instead of skipping the line.
// Default: false (skip malformed lines and continue).
func WithStopOnError(stop bool) Option {
	return func(c *config) {
		c.stopOnError = stop
	}
}

// WithMaxFileBytes sets the largest file ParseFile will read.
// Default is 64MB. Set to 0 for unlimited.
func WithMaxFileBytes(max int64) Option {
	return func(c *config) {
		c.maxFileBytes = max
	}
}

// WithReadTimeout sets how long a single serial read may wait for a line.
// A capture returns at most one read timeout after its duration elapses,
// and reacts to context cancellation within one read timeout.
// Default: 1 second.
func WithReadTimeout(d time.Duration) Option {
	return func(c *config) {
		c.readTimeout = d
	}
}

// WithSerialConfig sets serial framing (data bits, parity, stop bits,
// tracing). Name and BaudRate are always taken from the Capture arguments.
func WithSerialConfig(sc SerialConfig) Option {
	return func(c *config) {
		c.serial = sc
	}
}

// WithEncoding sets the text encoding of serial data (a WHATWG label such
// as "utf-8" or "latin1"). Undecodable bytes are dropped.
// Default: utf-8.
func WithEncoding(name string) Option {
	return func(c *config) {
		c.encoding = name
	}
}

// WithPortOpener replaces the serial backend used by Capture.
// If open is nil, this option has no effect.
func WithPortOpener(open PortOpener) Option {
	return func(c *config) {
		if open != nil {
			c.opener = open
		}
	}
}

// WithFromStart makes Tail read the existing file content before following
// new lines. Default: false (only lines appended after Tail starts).
func WithFromStart(fromStart bool) Option {
	return func(c *config) {
		c.fromStart = fromStart
	}
}

// WithTailPoll makes Tail poll the file for changes instead of using file
// system notifications. Useful on network file systems.
func WithTailPoll(poll bool) Option {
	return func(c *config) {
		c.tailPoll = poll
	}
}
