// Package core implements a polled, blocking I2C master on an STM32 (I2C v2)
// controller: register byte reads, burst reads and burst writes built from
// START/RESTART/STOP framed transfers with NACK abort handling.
package core

import (
	"sync"

	"periph.io/x/conn/v3/physic"
)

// Default configuration: I2C1 fed from an 8 MHz PCLK1, standard mode.
const (
	DefaultName       = "I2C1"
	DefaultInputClock = 8 * physic.MegaHertz
	DefaultFrequency  = 100 * physic.KiloHertz
)

// Config holds controller configuration applied by New.
type Config struct {
	// Name identifies the controller in debug output and String.
	Name string

	// InputClock is the kernel clock feeding the controller.
	InputClock physic.Frequency

	// Frequency is the target SCL frequency.
	Frequency physic.Frequency

	// SpinLimit bounds the number of status polls spent in any single wait.
	// Zero waits forever.
	SpinLimit uint32

	// Debug receives abort, reject and timeout reports. Optional.
	Debug DebugWriter
}

// Master drives one I2C controller as bus master.
//
// Every operation blocks the caller until the transfer completes or aborts.
// A Master owns its controller; nothing else may touch the registers while
// an operation runs.
type Master struct {
	mu sync.Mutex

	regs      Registers
	name      string
	input     physic.Frequency
	timing    Timing
	spinLimit uint32
	debug     DebugWriter

	xfer    Transfer
	one     [1]byte
	ptr     [1]byte
	scratch [MaxTransferBytes]byte
}

// New configures the controller behind regs and returns a Master for it.
// Timing is computed once here (and again by SetSpeed).
func New(regs Registers, cfg Config) (*Master, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.InputClock == 0 {
		cfg.InputClock = DefaultInputClock
	}
	if cfg.Frequency == 0 {
		cfg.Frequency = DefaultFrequency
	}

	timing, err := ComputeTiming(cfg.InputClock, cfg.Frequency)
	if err != nil {
		return nil, err
	}

	m := &Master{
		regs:      regs,
		name:      cfg.Name,
		input:     cfg.InputClock,
		timing:    timing,
		spinLimit: cfg.SpinLimit,
		debug:     cfg.Debug,
	}
	m.configure()
	return m, nil
}

// configure disables the peripheral, loads TIMINGR and enables it again.
// TIMINGR can only be written while PE is clear.
func (m *Master) configure() {
	cr1 := m.regs.Load(RegCR1)
	m.regs.Store(RegCR1, cr1&^CR1_PE)
	m.regs.Store(RegTIMINGR, m.timing.Value())
	m.regs.Store(RegCR1, cr1|CR1_PE)

	if m.debugging() {
		m.debugf("timing=" + hex32(m.timing.Value()))
	}
}

// String returns the controller name.
func (m *Master) String() string {
	return m.name
}

// Timing returns the TIMINGR fields in use.
func (m *Master) Timing() Timing {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timing
}

// SetSpeed reprograms the controller for a new SCL frequency.
func (m *Master) SetSpeed(f physic.Frequency) error {
	timing, err := ComputeTiming(m.input, f)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.timing = timing
	m.configure()
	return nil
}

// ByteRead reads the single register reg of the slave at addr.
func (m *Master) ByteRead(addr Address, reg uint8) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.readRegister(addr, reg, m.one[:]); err != nil {
		return 0, err
	}
	return m.one[0], nil
}

// BurstRead fills buf with consecutive registers starting at reg.
// An empty buf succeeds without bus activity. At most MaxTransferBytes
// bytes can be read.
func (m *Master) BurstRead(addr Address, reg uint8, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readRegister(addr, reg, buf)
}

// BurstWrite writes data to consecutive registers starting at reg.
// Empty data succeeds without bus activity. The register pointer travels in
// the same transfer, so at most MaxTransferBytes-1 data bytes fit.
func (m *Master) BurstWrite(addr Address, reg uint8, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeRegister(addr, reg, data)
}
