// Package periphbus exposes a periph.io I2C bus (a Linux /dev/i2c-N adapter
// or anything else registered with i2creg) with the register operations of
// core.Master, so sensor drivers run unchanged on a host.
package periphbus

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"i2cmaster/core"
)

// Bus adapts an i2c.Bus. Requests follow core.Master's rules: zero-length
// requests succeed without a transfer, oversized ones fail with
// core.ErrTooLong, and failed transfers match core.ErrAborted.
type Bus struct {
	mu      sync.Mutex
	bus     i2c.Bus
	closer  i2c.BusCloser
	scratch [core.MaxTransferBytes]byte
}

// New wraps an already open bus. Closing the returned Bus does not close b.
func New(b i2c.Bus) *Bus {
	return &Bus{bus: b}
}

// Open initializes the periph host drivers and opens the named bus. An
// empty name selects the first registered bus.
func Open(name string, freq physic.Frequency) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periphbus: host init: %w", err)
	}

	bc, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("periphbus: open %q: %w", name, err)
	}
	if freq != 0 {
		if err := bc.SetSpeed(freq); err != nil {
			bc.Close()
			return nil, fmt.Errorf("periphbus: set speed %s: %w", freq, err)
		}
	}
	return &Bus{bus: bc, closer: bc}, nil
}

// Close releases a bus opened by Open.
func (b *Bus) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func (b *Bus) String() string {
	return b.bus.String()
}

// TxError is a failed transaction on the underlying bus. Adapters such as
// Linux i2c-dev report a NACK as a generic I/O error (EREMOTEIO), so any
// failure other than a core.ErrTimeout matches core.ErrAborted.
type TxError struct {
	Addr core.Address
	Err  error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("periphbus: transaction with %#02x failed: %v", uint8(e.Addr), e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }

func (e *TxError) Is(target error) bool {
	return target == core.ErrAborted && !errors.Is(e.Err, core.ErrTimeout)
}

func tx(d *i2c.Dev, w, r []byte) error {
	if err := d.Tx(w, r); err != nil {
		return &TxError{Addr: core.Address(d.Addr), Err: err}
	}
	return nil
}

func (b *Bus) dev(addr core.Address) (*i2c.Dev, error) {
	if !addr.Valid() {
		return nil, core.ErrInvalidAddress
	}
	return &i2c.Dev{Bus: b.bus, Addr: uint16(addr)}, nil
}

// ByteRead reads the single register reg of the slave at addr.
func (b *Bus) ByteRead(addr core.Address, reg uint8) (byte, error) {
	var v [1]byte
	if err := b.BurstRead(addr, reg, v[:]); err != nil {
		return 0, err
	}
	return v[0], nil
}

// BurstRead fills buf with consecutive registers starting at reg.
func (b *Bus) BurstRead(addr core.Address, reg uint8, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if len(buf) > core.MaxTransferBytes {
		return core.ErrTooLong
	}
	d, err := b.dev(addr)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return tx(d, []byte{reg}, buf)
}

// BurstWrite writes data to consecutive registers starting at reg.
func (b *Bus) BurstWrite(addr core.Address, reg uint8, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n := 1 + len(data)
	if n > core.MaxTransferBytes {
		return core.ErrTooLong
	}
	d, err := b.dev(addr)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.scratch[0] = reg
	copy(b.scratch[1:], data)
	return tx(d, b.scratch[:n], nil)
}
