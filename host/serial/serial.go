package serial

import (
	"io"
)

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the debug console
	Baud int
}

// DefaultConfig returns the configuration of a typical UART debug console
func DefaultConfig(device string) *Config {
	return &Config{
		Device: device,
		Baud:   115200,
	}
}

// LineWriter adapts a writer into a line-oriented log sink. Each message is
// written followed by CRLF. Write errors are counted, not returned.
type LineWriter struct {
	w      io.Writer
	Errors int
}

// NewLineWriter wraps a writer
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// WriteLine writes one message. Its signature matches core.DebugWriter.
func (lw *LineWriter) WriteLine(msg string) {
	if _, err := io.WriteString(lw.w, msg+"\r\n"); err != nil {
		lw.Errors++
	}
}
