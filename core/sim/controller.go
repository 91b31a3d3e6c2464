// Package sim models an STM32 I2C (v2) controller in master mode together
// with the slaves on its bus, behind the core.Registers interface.
//
// The model is synchronous: every register access completes the bus activity
// it triggers before returning, so flags a real controller would raise later
// are already set on the next ISR read.
package sim

import (
	"i2cmaster/core"
)

// ICR clear bits map one-to-one onto ISR flag positions.
const icrMask = 0x3F38

// Controller is a simulated controller. It is not safe for concurrent use.
type Controller struct {
	cr1     uint32
	cr2     uint32
	timingr uint32
	isr     uint32
	rxdr    uint32
	other   map[core.Reg]uint32

	devices map[core.Address]Device
	dev     Device

	addr      core.Address
	read      bool
	autoend   bool
	remaining int
	busy      bool
	held      bool

	holdBus  bool
	accesses int
	overruns int
	trace    []Event
}

// New returns a disabled controller with an empty bus.
func New() *Controller {
	return &Controller{
		other:   make(map[core.Reg]uint32),
		devices: make(map[core.Address]Device),
	}
}

// Attach connects d to the bus at addr.
func (c *Controller) Attach(addr core.Address, d Device) {
	c.devices[addr] = d
}

// HoldBus forces the BUSY flag on, as if another master or a stuck slave
// held the lines low.
func (c *Controller) HoldBus(on bool) {
	c.holdBus = on
}

// Busy reports the BUSY flag.
func (c *Controller) Busy() bool {
	return c.busy || c.holdBus
}

// Enabled reports whether CR1.PE is set.
func (c *Controller) Enabled() bool {
	return c.cr1&core.CR1_PE != 0
}

// Timing returns the loaded TIMINGR value.
func (c *Controller) Timing() uint32 {
	return c.timingr
}

// Accesses returns the number of register loads and stores so far.
func (c *Controller) Accesses() int {
	return c.accesses
}

// Overruns counts TXDR writes made while the controller did not expect one.
func (c *Controller) Overruns() int {
	return c.overruns
}

// Trace returns a copy of the bus events recorded so far.
func (c *Controller) Trace() []Event {
	out := make([]Event, len(c.trace))
	copy(out, c.trace)
	return out
}

// ResetTrace discards recorded events and the access counter.
func (c *Controller) ResetTrace() {
	c.trace = c.trace[:0]
	c.accesses = 0
	c.overruns = 0
}

// Count returns how many events of kind were recorded.
func (c *Controller) Count(kind EventKind) int {
	n := 0
	for _, e := range c.trace {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Load implements core.Registers.
func (c *Controller) Load(r core.Reg) uint32 {
	c.accesses++
	switch r {
	case core.RegCR1:
		return c.cr1
	case core.RegCR2:
		return c.cr2
	case core.RegTIMINGR:
		return c.timingr
	case core.RegISR:
		v := c.isr
		if c.Busy() {
			v |= core.ISR_BUSY
		}
		return v
	case core.RegRXDR:
		return c.receive()
	case core.RegICR, core.RegTXDR:
		return 0
	}
	return c.other[r]
}

// Store implements core.Registers.
func (c *Controller) Store(r core.Reg, v uint32) {
	c.accesses++
	switch r {
	case core.RegCR1:
		c.cr1 = v
		if v&core.CR1_PE == 0 {
			// Clearing PE resets the communication state and flags.
			c.isr = 0
			c.busy = false
			c.held = false
			c.dev = nil
		}
	case core.RegCR2:
		// START and STOP read back as zero once acted upon.
		c.cr2 = v &^ (core.CR2_START | core.CR2_STOP)
		if v&core.CR2_STOP != 0 {
			c.stopRequest()
		}
		if v&core.CR2_START != 0 {
			c.start()
		}
	case core.RegTIMINGR:
		// Write-protected while the peripheral is enabled.
		if !c.Enabled() {
			c.timingr = v
		}
	case core.RegICR:
		c.isr &^= v & icrMask
	case core.RegTXDR:
		c.transmit(byte(v))
	case core.RegISR, core.RegRXDR:
	default:
		c.other[r] = v
	}
}

func (c *Controller) record(e Event) {
	c.trace = append(c.trace, e)
}

func (c *Controller) start() {
	if !c.Enabled() || (c.busy && !c.held) {
		return
	}

	kind := EventStart
	if c.held {
		kind = EventRestart
	}

	c.addr = core.Address((c.cr2 & core.CR2_SADD_MASK) >> core.CR2_SADD_POS)
	c.read = c.cr2&core.CR2_RD_WRN != 0
	c.autoend = c.cr2&core.CR2_AUTOEND != 0
	c.remaining = int((c.cr2 & core.CR2_NBYTES) >> core.CR2_NBYTES_POS)
	c.isr &^= core.ISR_TC | core.ISR_TXIS | core.ISR_RXNE
	c.busy = true
	c.held = false
	c.record(Event{Kind: kind, Addr: c.addr, Read: c.read})

	c.dev = c.devices[c.addr]
	if c.dev == nil || !c.dev.Start(c.read) {
		c.record(Event{Kind: EventAddrNack, Addr: c.addr})
		c.nack()
		return
	}

	switch {
	case c.remaining == 0:
		c.complete()
	case c.read:
		c.fetch()
	default:
		c.isr |= core.ISR_TXIS
	}
}

// nack raises NACKF. With AUTOEND the controller follows up with STOP on its
// own; otherwise it waits for software.
func (c *Controller) nack() {
	c.isr |= core.ISR_NACKF
	if c.autoend {
		c.generateStop()
	}
}

func (c *Controller) generateStop() {
	c.record(Event{Kind: EventStop, Addr: c.addr})
	if c.dev != nil {
		c.dev.Stop()
	}
	c.dev = nil
	c.busy = false
	c.held = false
	c.isr &^= core.ISR_TXIS | core.ISR_RXNE | core.ISR_TC
	c.isr |= core.ISR_STOPF
}

// stopRequest handles CR2.STOP. It has no effect on an idle bus.
func (c *Controller) stopRequest() {
	if c.busy {
		c.generateStop()
	}
}

// complete ends the programmed byte count.
func (c *Controller) complete() {
	if c.autoend {
		c.generateStop()
		return
	}
	c.held = true
	c.isr |= core.ISR_TC
}

func (c *Controller) transmit(b byte) {
	if !c.busy || c.held || c.read || c.isr&core.ISR_TXIS == 0 {
		c.overruns++
		return
	}
	c.isr &^= core.ISR_TXIS
	c.record(Event{Kind: EventWrite, Addr: c.addr, Data: b})
	if !c.dev.Write(b) {
		c.record(Event{Kind: EventDataNack, Addr: c.addr, Data: b})
		c.nack()
		return
	}
	c.remaining--
	if c.remaining > 0 {
		c.isr |= core.ISR_TXIS
		return
	}
	c.complete()
}

func (c *Controller) fetch() {
	b := c.dev.Read()
	c.rxdr = uint32(b)
	c.record(Event{Kind: EventRead, Addr: c.addr, Data: b})
	c.isr |= core.ISR_RXNE
}

// receive returns RXDR. Reading a full RXDR lets the next byte in, or ends
// the transfer after the last one.
func (c *Controller) receive() uint32 {
	v := c.rxdr
	if c.isr&core.ISR_RXNE == 0 {
		return v
	}
	c.isr &^= core.ISR_RXNE
	c.remaining--
	if c.remaining > 0 {
		c.fetch()
	} else {
		c.complete()
	}
	return v
}
