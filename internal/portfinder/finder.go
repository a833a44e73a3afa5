// Package portfinder provides serial port selection.
package portfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/uartlog/uartlog-go/internal/serialport"
)

// EnvPort is the environment variable name for specifying the serial port.
const EnvPort = "UARTLOG_PORT"

// ErrNoPorts is returned when no serial port is specified and none is detected.
var ErrNoPorts = errors.New("no serial ports found")

// listPorts is replaced in tests.
var listPorts = serialport.ListPorts

// portRank orders detected ports: USB adapters first, then on-board UARTs.
var portRank = []string{
	"ttyUSB", "ttyACM", "cu.usbserial", "cu.usbmodem", "ttyXRUSB",
	"ttyAMA", "COM", "ttyS",
}

// FindPort returns the serial port to capture from.
//
// Priority:
//  1. explicit (if non-empty)
//  2. UARTLOG_PORT environment variable
//  3. The best ranked port reported by the serial backend
//
// Returns ErrNoPorts if nothing is specified and no port is detected.
func FindPort(explicit string) (string, error) {
	// 1. Check explicit
	if explicit != "" {
		return explicit, nil
	}

	// 2. Check environment variable
	if env := strings.TrimSpace(os.Getenv(EnvPort)); env != "" {
		return env, nil
	}

	// 3. Auto-detect
	ports, err := DetectPorts()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", ErrNoPorts
	}
	return ports[0], nil
}

// DetectPorts lists available serial ports in preference order.
func DetectPorts() ([]string, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}

	sorted := make([]string, len(ports))
	copy(sorted, ports)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rank(sorted[i]), rank(sorted[j])
		if ri != rj {
			return ri < rj
		}
		return sorted[i] < sorted[j]
	})
	return sorted, nil
}

func rank(port string) int {
	base := filepath.Base(port)
	for i, prefix := range portRank {
		if strings.HasPrefix(base, prefix) {
			return i
		}
	}
	return len(portRank)
}
