//go:build tinygo && stm32f3

package main

import (
	"runtime/volatile"
	"unsafe"
)

// Peripheral base addresses
const (
	rccBase   = 0x40021000
	gpioBBase = 0x48000400
)

// RCC registers and bits
const (
	rccAHBENR  = 0x14
	rccAPB1ENR = 0x1C
	rccCFGR3   = 0x30

	rccIOPBEN  = 1 << 18
	rccI2C1EN  = 1 << 21
	rccI2C1SW  = 1 << 4 // Set selects SYSCLK, clear selects HSI
	gpioModeAF = 0b10
	gpioPullUp = 0b01
	afI2C1     = 4
)

// GPIO registers
const (
	gpioMODER   = 0x00
	gpioOTYPER  = 0x04
	gpioOSPEEDR = 0x08
	gpioPUPDR   = 0x0C
	gpioAFRH    = 0x24
)

func reg(base, off uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(base + off))
}

// initI2C1Pins clocks GPIOB and I2C1 from the 8 MHz HSI and routes PB8 (SCL)
// and PB9 (SDA) to the controller as open-drain outputs with pull-ups.
func initI2C1Pins() {
	reg(rccBase, rccAHBENR).SetBits(rccIOPBEN)
	reg(rccBase, rccCFGR3).ClearBits(rccI2C1SW)
	reg(rccBase, rccAPB1ENR).SetBits(rccI2C1EN)

	for _, pin := range []uint32{8, 9} {
		shift2 := pin * 2
		reg(gpioBBase, gpioMODER).ReplaceBits(gpioModeAF, 0b11, uint8(shift2))
		reg(gpioBBase, gpioOTYPER).SetBits(1 << pin)
		reg(gpioBBase, gpioOSPEEDR).ReplaceBits(0b11, 0b11, uint8(shift2))
		reg(gpioBBase, gpioPUPDR).ReplaceBits(gpioPullUp, 0b11, uint8(shift2))

		shift4 := (pin - 8) * 4
		reg(gpioBBase, gpioAFRH).ReplaceBits(afI2C1, 0x0F, uint8(shift4))
	}
}
