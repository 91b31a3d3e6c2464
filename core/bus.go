package core

import (
	"periph.io/x/conn/v3/i2c"
	"tinygo.org/x/drivers"
)

// Master can stand in for the bus of TinyGo device drivers and periph
// devices.
var (
	_ drivers.I2C = (*Master)(nil)
	_ i2c.Bus     = (*Master)(nil)
)

// Tx performs a write and then a read transfer placing the result in r,
// joined by a RESTART.
//
// Passing a nil value for w or r skips the transfer corresponding to write
// or read, respectively.
//
//	m.Tx(addr, nil, r)
//
// Performs only a read transfer.
//
//	m.Tx(addr, w, nil)
//
// Performs only a write transfer.
func (m *Master) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return ErrInvalidAddress
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeRead(Address(addr), w, r)
}

// ReadRegister reads len(buf) bytes starting at register r of the device at
// addr.
func (m *Master) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return m.BurstRead(Address(addr), r, buf)
}

// WriteRegister writes buf starting at register r of the device at addr.
func (m *Master) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return m.BurstWrite(Address(addr), r, buf)
}
