package serial

import (
	"errors"
	"fmt"

	"github.com/tarm/serial"
)

// ErrNoDevice is returned by Open for an empty device path.
var ErrNoDevice = errors.New("serial: no device given")

// NativePort wraps the tarm/serial implementation.
type NativePort struct {
	port *serial.Port
	cfg  Config
}

// Open opens a native serial port.
func Open(cfg Config) (*NativePort, error) {
	if cfg.Device == "" {
		return nil, ErrNoDevice
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &NativePort{port: port, cfg: cfg}, nil
}

// String returns the device path.
func (p *NativePort) String() string {
	return p.cfg.Device
}

func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *NativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

func (p *NativePort) Flush() error {
	return p.port.Flush()
}

var _ Port = (*NativePort)(nil)
