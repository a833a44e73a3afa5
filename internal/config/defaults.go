package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultBaudRate           = 9600
	DefaultDataBits           = 8
	DefaultParity             = "None"
	DefaultStopBits           = 1
	DefaultEncoding           = "utf-8"
	DefaultReadTimeout        = time.Second
	DefaultCaptureDuration    = 10 * time.Second
	DefaultFormat             = "table"
	DefaultListen             = ":8080"
	DefaultMaxCaptureDuration = 5 * time.Minute
	DefaultMaxUploadBytes     = 16 * 1024 * 1024
)

// Environment variable names.
const (
	EnvPort     = "UARTLOG_PORT"
	EnvBaud     = "UARTLOG_BAUD"
	EnvListen   = "UARTLOG_LISTEN"
	EnvAPIToken = "UARTLOG_API_TOKEN"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Serial: SerialConfig{
			BaudRate:    DefaultBaudRate,
			DataBits:    DefaultDataBits,
			Parity:      DefaultParity,
			StopBits:    DefaultStopBits,
			Encoding:    DefaultEncoding,
			ReadTimeout: DefaultReadTimeout,
		},
		Capture: CaptureConfig{
			Duration: DefaultCaptureDuration,
		},
		Output: OutputConfig{
			Format: DefaultFormat,
		},
		Server: ServerConfig{
			Listen:             DefaultListen,
			MaxCaptureDuration: DefaultMaxCaptureDuration,
			MaxUploadBytes:     DefaultMaxUploadBytes,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	if port := os.Getenv(EnvPort); port != "" {
		c.Serial.Port = port
	}
	if baud := os.Getenv(EnvBaud); baud != "" {
		n, err := strconv.Atoi(baud)
		if err != nil {
			return fmt.Errorf("%s: invalid baud rate %q", EnvBaud, baud)
		}
		c.Serial.BaudRate = n
	}
	if listen := os.Getenv(EnvListen); listen != "" {
		c.Server.Listen = listen
	}
	if token := os.Getenv(EnvAPIToken); token != "" {
		c.Server.APIToken = token
	}
	return nil
}
