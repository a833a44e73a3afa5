// Package config loads the uartlog CLI and server configuration.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Capture CaptureConfig `yaml:"capture"`
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
}

// SerialConfig describes the serial port used for live capture.
type SerialConfig struct {
	// Port is the port name. Empty means auto-detect.
	Port     string `yaml:"port,omitempty"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`

	// Encoding is a WHATWG encoding label for received bytes.
	Encoding string `yaml:"encoding"`

	// ReadTimeout bounds a single line read.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// Trace is a gxserial trace level (Off, Error, Warning, Info, Verbose).
	Trace string `yaml:"trace,omitempty"`
}

// CaptureConfig holds live capture defaults.
type CaptureConfig struct {
	Duration time.Duration `yaml:"duration"`
}

// OutputConfig holds presentation defaults.
type OutputConfig struct {
	// Format is one of table, csv, jsonl or pretty.
	Format string `yaml:"format"`

	// RulesFile is an optional classify rule file.
	RulesFile string `yaml:"rules_file,omitempty"`

	// ExportPath, when set, receives a CSV copy of every result.
	ExportPath string `yaml:"export_path,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen string `yaml:"listen"`

	// APIToken protects the capture endpoint when set.
	APIToken string `yaml:"api_token,omitempty"`

	// MaxCaptureDuration caps duration_seconds of capture requests.
	MaxCaptureDuration time.Duration `yaml:"max_capture_duration"`

	// MaxUploadBytes caps the body of parse requests.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}
