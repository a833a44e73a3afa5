// Package serialport provides line-oriented access to serial ports.
//
// The default implementation is backed by github.com/Gurux/gxserial-go.
// Callers depend on the Port interface so tests and alternative transports
// can supply their own connections through an Opener.
package serialport

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Port is an open serial connection that is read one line at a time.
// A Port is owned by a single reader and is not safe for concurrent use.
type Port interface {
	// ReadLine waits up to timeout for a complete line and returns it
	// without the trailing line terminator. It returns (nil, nil) if no
	// complete line arrived within timeout.
	ReadLine(timeout time.Duration) ([]byte, error)

	// Close releases the connection. It is safe to call more than once.
	Close() error
}

// Opener opens a Port for the given configuration.
type Opener func(cfg Config) (Port, error)

// Default serial framing.
const (
	DefaultDataBits = 8
	DefaultParity   = "None"
	DefaultStopBits = 1
)

// supportedBaudRates are the rates the serial backend can configure.
var supportedBaudRates = map[int]bool{
	50: true, 75: true, 110: true, 134: true, 150: true, 200: true,
	300: true, 600: true, 1200: true, 1800: true, 2400: true, 4800: true,
	9600: true, 19200: true, 38400: true, 57600: true, 115200: true,
}

// Config describes how to open a serial port.
type Config struct {
	Name     string
	BaudRate int
	DataBits int    // 5..8, default 8
	Parity   string // None, Odd, Even, Mark, Space; default None
	StopBits int    // 1 or 2, default 1

	// Trace is an optional gxcommon trace level name (e.g. "Verbose").
	// Trace output is written to Logger at debug level.
	Trace string

	// Language localizes backend messages (BCP 47 tag, e.g. "de").
	Language string

	Logger *slog.Logger
}

// withDefaults fills zero-valued framing fields.
func (c Config) withDefaults() Config {
	if c.DataBits == 0 {
		c.DataBits = DefaultDataBits
	}
	if c.Parity == "" {
		c.Parity = DefaultParity
	}
	if c.StopBits == 0 {
		c.StopBits = DefaultStopBits
	}
	return c
}

// Validate checks the configuration without touching hardware.
func (c Config) Validate() error {
	c = c.withDefaults()
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("port name is required")
	}
	if !supportedBaudRates[c.BaudRate] {
		return fmt.Errorf("unsupported baud rate %d", c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("data bits must be between 5 and 8, got %d", c.DataBits)
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return fmt.Errorf("stop bits must be 1 or 2, got %d", c.StopBits)
	}
	if _, ok := parities[strings.ToLower(c.Parity)]; !ok {
		return fmt.Errorf("unknown parity %q", c.Parity)
	}
	return nil
}

// String returns a short description such as "/dev/ttyUSB0 9600 8N1".
func (c Config) String() string {
	c = c.withDefaults()
	p := "N"
	if c.Parity != "" {
		p = strings.ToUpper(c.Parity[:1])
	}
	return fmt.Sprintf("%s %d %d%s%d", c.Name, c.BaudRate, c.DataBits, p, c.StopBits)
}
