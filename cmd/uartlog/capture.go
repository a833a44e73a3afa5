package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/uartlog/uartlog-go/internal/portfinder"
	"github.com/uartlog/uartlog-go/pkg/uartlog"
)

type captureFlags struct {
	port        string
	baud        int
	duration    int
	readTimeout time.Duration
	encoding    string
	trace       string
}

func newCaptureCmd(a *app) *cobra.Command {
	var f outputFlags
	var c captureFlags

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture UART traffic from a serial port",
		Long: `Capture lines from a serial port for a fixed duration and print the
records received.

The port is taken from --port, then UARTLOG_PORT or the config file, then
the first detected serial port. Ctrl-C stops the capture early; the records
received so far are still printed.

Examples:
  uartlog capture -p /dev/ttyUSB0 -b 115200 -d 30
  uartlog capture -p COM3 --format pretty --category error,warning`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runCapture(ctx, cmd, &f, &c)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&c.port, "port", "p", "",
		"Serial port (auto-detected if not specified)")
	flags.IntVarP(&c.baud, "baud", "b", 0,
		"Baud rate (default from config, else 9600)")
	flags.IntVarP(&c.duration, "duration", "d", 0,
		"Capture duration in seconds (default from config, else 10)")
	flags.DurationVar(&c.readTimeout, "read-timeout", 0,
		"Per-line read timeout (default from config, else 1s)")
	flags.StringVar(&c.encoding, "encoding", "",
		"Text encoding of the serial data (default utf-8)")
	flags.StringVar(&c.trace, "trace", "",
		"Serial backend trace level: Off, Error, Warning, Info, Verbose")
	addOutputFlags(cmd, &f)
	return cmd
}

func (a *app) runCapture(ctx context.Context, cmd *cobra.Command, f *outputFlags, c *captureFlags) error {
	explicit := c.port
	if explicit == "" {
		explicit = a.cfg.Serial.Port
	}
	port, err := portfinder.FindPort(explicit)
	if err != nil {
		return err
	}

	baud := a.cfg.Serial.BaudRate
	if c.baud != 0 {
		baud = c.baud
	}
	duration := a.cfg.Capture.Duration
	if c.duration != 0 {
		duration = time.Duration(c.duration) * time.Second
	}
	readTimeout := a.cfg.Serial.ReadTimeout
	if c.readTimeout != 0 {
		readTimeout = c.readTimeout
	}
	encoding := a.cfg.Serial.Encoding
	if c.encoding != "" {
		encoding = c.encoding
	}
	serial := a.cfg.Serial.PortConfig()
	if c.trace != "" {
		serial.Trace = c.trace
	}

	opts := append(a.readerOptions(f),
		uartlog.WithReadTimeout(readTimeout),
		uartlog.WithEncoding(encoding),
		uartlog.WithSerialConfig(serial),
		uartlog.WithPortOpener(a.opener),
	)

	a.logger.Info("capturing", "port", port, "baud_rate", baud, "duration", duration)
	events, err := uartlog.Capture(ctx, port, baud, duration, opts...)
	if errors.Is(err, context.Canceled) {
		a.logger.Warn("capture interrupted", "events", len(events))
		err = nil
	}
	if events == nil {
		return err
	}

	if perr := a.present(cmd, f, events); perr != nil {
		return perr
	}
	return err
}
