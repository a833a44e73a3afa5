package uartlog

import "github.com/uartlog/uartlog-go/internal/serialport"

// Port is an open serial connection read one line at a time.
// ReadLine returns (nil, nil) when no complete line arrived within the
// timeout.
type Port = serialport.Port

// PortOpener opens a Port. Capture uses the gxserial backend unless
// WithPortOpener supplies another one.
type PortOpener = serialport.Opener

// SerialConfig describes serial framing and backend settings.
type SerialConfig = serialport.Config

// ListPorts returns the serial ports present on this machine.
func ListPorts() ([]string, error) {
	return serialport.ListPorts()
}
