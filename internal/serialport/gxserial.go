package serialport

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Gurux/gxcommon-go"
	"github.com/Gurux/gxserial-go"
	"golang.org/x/text/language"
)

var parities = map[string]gxcommon.Parity{
	"none":  gxcommon.ParityNone,
	"odd":   gxcommon.ParityOdd,
	"even":  gxcommon.ParityEven,
	"mark":  gxcommon.ParityMark,
	"space": gxcommon.ParitySpace,
}

var stopBits = map[int]gxcommon.StopBits{
	1: gxcommon.StopBitsOne,
	2: gxcommon.StopBitsTwo,
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// gxPort reads lines through the synchronous receive API of gxserial.
type gxPort struct {
	media   *gxserial.GXSerial
	release func() // ends synchronous mode
	log     *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Open opens a serial port using the gxserial backend.
func Open(cfg Config) (Port, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	log := cfg.Logger
	if log == nil {
		log = discardLogger
	}

	media := gxserial.NewGXSerial(cfg.Name,
		gxcommon.BaudRate(cfg.BaudRate),
		cfg.DataBits,
		stopBits[cfg.StopBits],
		parities[strings.ToLower(cfg.Parity)])

	if cfg.Language != "" {
		tag, err := language.Parse(cfg.Language)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", cfg.Language, err)
		}
		media.Localize(tag)
	}
	if cfg.Trace != "" {
		level, err := gxcommon.TraceLevelParse(cfg.Trace)
		if err != nil {
			return nil, fmt.Errorf("invalid trace level %q: %w", cfg.Trace, err)
		}
		if err := media.SetTrace(level); err != nil {
			return nil, err
		}
		media.SetOnTrace(func(m gxcommon.IGXMedia, e gxcommon.TraceEventArgs) {
			log.Debug("serial trace", "port", m.GetName(), "trace", e.String())
		})
	}
	media.SetOnError(func(m gxcommon.IGXMedia, err error) {
		log.Debug("serial error", "port", m.GetName(), "error", err)
	})

	if err := media.Validate(); err != nil {
		return nil, err
	}

	// Enter synchronous mode before opening so no bytes are routed to the
	// (unset) asynchronous receive handler.
	release := media.GetSynchronous()
	if err := media.Open(); err != nil {
		release()
		return nil, err
	}
	log.Debug("serial port opened", "port", cfg.String())

	return &gxPort{media: media, release: release, log: log}, nil
}

// ReadLine implements Port.
func (p *gxPort) ReadLine(timeout time.Duration) ([]byte, error) {
	waitMs := int(timeout / time.Millisecond)
	if waitMs < 1 {
		waitMs = 1
	}

	r := gxcommon.NewReceiveParameters[string]()
	r.EOP = "\n"
	r.Count = 0
	r.WaitTime = waitMs

	ok, err := p.media.Receive(r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var line []byte
	switch v := r.Reply.(type) {
	case string:
		line = []byte(v)
	case []byte:
		line = v
	default:
		line = []byte(fmt.Sprint(v))
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

// Close implements Port.
func (p *gxPort) Close() error {
	p.closeOnce.Do(func() {
		p.release()
		p.closeErr = p.media.Close()
		p.log.Debug("serial port closed", "port", p.media.GetName())
	})
	return p.closeErr
}

// ListPorts returns the serial ports present on this machine.
func ListPorts() ([]string, error) {
	return gxserial.GetPortNames()
}
