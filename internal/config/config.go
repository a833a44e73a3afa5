package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/uartlog/uartlog-go/internal/serialport"
)

// Formats accepted by Output.Format.
var Formats = []string{"table", "csv", "jsonl", "pretty"}

// Load reads and validates a configuration file.
// An empty path skips the file and returns the defaults with environment
// overrides applied.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks a configuration for errors.
func Validate(cfg *Config) error {
	if err := validateSerial(&cfg.Serial); err != nil {
		return fmt.Errorf("serial: %w", err)
	}
	if cfg.Capture.Duration <= 0 {
		return errors.New("capture: duration must be positive")
	}
	if !slices.Contains(Formats, cfg.Output.Format) {
		return fmt.Errorf("output: format %q is not one of %v", cfg.Output.Format, Formats)
	}
	if cfg.Server.Listen == "" {
		return errors.New("server: listen address is required")
	}
	if cfg.Server.MaxCaptureDuration <= 0 {
		return errors.New("server: max_capture_duration must be positive")
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		return errors.New("server: max_upload_bytes must be positive")
	}
	return nil
}

func validateSerial(s *SerialConfig) error {
	if s.ReadTimeout <= 0 {
		return errors.New("read_timeout must be positive")
	}
	if _, err := serialport.NewDecoder(s.Encoding); err != nil {
		return err
	}
	// The port name is checked when a capture starts; it may come from
	// auto-detection.
	probe := s.PortConfig()
	probe.Name = "probe"
	return probe.Validate()
}

// PortConfig returns the serial framing as a serialport.Config.
func (s SerialConfig) PortConfig() serialport.Config {
	return serialport.Config{
		Name:     s.Port,
		BaudRate: s.BaudRate,
		DataBits: s.DataBits,
		Parity:   s.Parity,
		StopBits: s.StopBits,
		Trace:    s.Trace,
	}
}
