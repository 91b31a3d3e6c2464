//go:build tinygo

package core

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO is the base address of a memory-mapped I2C controller.
type MMIO uintptr

// STM32F3 I2C controller base addresses.
const (
	I2C1 MMIO = 0x40005400
	I2C2 MMIO = 0x40005800
)

func (b MMIO) reg(r Reg) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(b) + uintptr(r)))
}

// Load reads register r with a volatile access.
func (b MMIO) Load(r Reg) uint32 {
	return b.reg(r).Get()
}

// Store writes register r with a volatile access.
func (b MMIO) Store(r Reg, v uint32) {
	b.reg(r).Set(v)
}
