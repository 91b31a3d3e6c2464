// Package mpu6050 reads the accelerometer of an InvenSense MPU-6050 over a
// register-oriented I2C bus.
package mpu6050

import (
	"errors"
	"fmt"
	"time"

	"i2cmaster/core"
)

// DefaultAddress is the slave address with AD0 tied low.
const DefaultAddress core.Address = 0x68

// Registers
const (
	RegAccelConfig = 0x1C
	RegAccelXOutH  = 0x3B
	RegPwrMgmt1    = 0x6B
	RegWhoAmI      = 0x75
)

const (
	whoAmI = 0x68

	pwrDeviceReset = 0x80
	pwrClockPLLX   = 0x01 // Awake, PLL with X axis gyroscope reference
	accelFS4G      = 0x01 << 3

	// LSBPerG is the accelerometer sensitivity at the ±4 g range.
	LSBPerG = 8192
)

// ResetDelay is the wait after DEVICE_RESET before the device answers again.
const ResetDelay = 100 * time.Millisecond

// ErrUnknownDevice is returned by Init when WHO_AM_I does not identify an
// MPU-6050.
var ErrUnknownDevice = errors.New("mpu6050: unexpected WHO_AM_I")

// RegisterBus is the subset of a bus master the driver needs.
// *core.Master implements it.
type RegisterBus interface {
	ByteRead(addr core.Address, reg uint8) (byte, error)
	BurstRead(addr core.Address, reg uint8, buf []byte) error
	BurstWrite(addr core.Address, reg uint8, data []byte) error
}

// Acceleration holds raw accelerometer samples.
type Acceleration struct {
	X, Y, Z int16
}

// ToG converts the samples to units of standard gravity.
func (a Acceleration) ToG() (x, y, z float32) {
	return float32(a.X) / LSBPerG, float32(a.Y) / LSBPerG, float32(a.Z) / LSBPerG
}

// Device is an MPU-6050 on a bus.
type Device struct {
	// Sleep waits out the device reset in Init. New sets it to time.Sleep.
	Sleep func(time.Duration)

	bus  RegisterBus
	addr core.Address
	buf  [6]byte
}

// New returns a driver for the device at addr. Call Init before reading.
func New(bus RegisterBus, addr core.Address) *Device {
	return &Device{Sleep: time.Sleep, bus: bus, addr: addr}
}

// Address returns the slave address of d.
func (d *Device) Address() core.Address {
	return d.addr
}

// Init checks the device identity, resets it, waits ResetDelay, wakes it up
// and selects the ±4 g accelerometer range.
func (d *Device) Init() error {
	id, err := d.bus.ByteRead(d.addr, RegWhoAmI)
	if err != nil {
		return err
	}
	if id != whoAmI {
		return fmt.Errorf("%w: %#02x", ErrUnknownDevice, id)
	}

	if err := d.writeByte(RegPwrMgmt1, pwrDeviceReset); err != nil {
		return err
	}
	d.Sleep(ResetDelay)

	if err := d.writeByte(RegPwrMgmt1, pwrClockPLLX); err != nil {
		return err
	}
	return d.writeByte(RegAccelConfig, accelFS4G)
}

// ReadAcceleration reads the three accelerometer axes in one burst.
func (d *Device) ReadAcceleration() (Acceleration, error) {
	if err := d.bus.BurstRead(d.addr, RegAccelXOutH, d.buf[:]); err != nil {
		return Acceleration{}, err
	}
	return Acceleration{
		X: int16(uint16(d.buf[0])<<8 | uint16(d.buf[1])),
		Y: int16(uint16(d.buf[2])<<8 | uint16(d.buf[3])),
		Z: int16(uint16(d.buf[4])<<8 | uint16(d.buf[5])),
	}, nil
}

func (d *Device) writeByte(reg, v uint8) error {
	d.buf[0] = v
	return d.bus.BurstWrite(d.addr, reg, d.buf[:1])
}
