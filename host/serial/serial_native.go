//go:build !wasm

package serial

import (
	"fmt"

	"github.com/tarm/serial"
)

// NativePort is a write-only debug console on a tarm/serial port
type NativePort struct {
	*LineWriter
	port *serial.Port
}

// Open opens the device for writing debug lines
func Open(cfg *Config) (*NativePort, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	port, err := serial.OpenPort(&serial.Config{Name: cfg.Device, Baud: cfg.Baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return &NativePort{LineWriter: NewLineWriter(port), port: port}, nil
}

// Close releases the device
func (p *NativePort) Close() error {
	return p.port.Close()
}
