// Package serial opens the diagnostics UART the monitor writes frames to and
// reads them from.
package serial

import (
	"io"
	"time"
)

// Port is an open serial port.
type Port interface {
	io.ReadWriteCloser

	// Flush discards data received but not read and data written but not
	// transmitted.
	Flush() error
}

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate of the target's USART
	Baud int

	// ReadTimeout bounds a Read; 0 blocks until data arrives.
	ReadTimeout time.Duration
}

// DefaultConfig returns the settings of the firmware's diagnostics USART.
func DefaultConfig(device string) Config {
	return Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}
