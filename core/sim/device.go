package sim

// Device is a slave attached to the simulated bus.
type Device interface {
	// Start is called when the device's address is sent after START or
	// RESTART. Returning false NACKs the address.
	Start(read bool) bool

	// Write delivers a byte from the master. Returning false NACKs it.
	Write(b byte) bool

	// Read returns the next byte for the master.
	Read() byte

	// Stop is called on STOP.
	Stop()
}

// Memory is a 256-register slave with an auto-incrementing register pointer,
// the layout of most sensors and 24C02-style EEPROMs. The first byte of each
// write transfer sets the pointer; further bytes are stored at it.
type Memory struct {
	Mem [256]byte

	ptr     uint8
	first   bool
	written int

	refuseAddr bool
	refuseRead bool
	refuseAt   int
}

// NewMemory returns a zeroed register file that acknowledges everything.
func NewMemory() *Memory {
	return &Memory{refuseAt: -1}
}

// RefuseAddress makes the device NACK its address in both directions.
func (m *Memory) RefuseAddress(on bool) { m.refuseAddr = on }

// RefuseRead makes the device NACK its address for read transfers only.
func (m *Memory) RefuseRead(on bool) { m.refuseRead = on }

// RefuseWriteAt makes the device NACK byte i of every write transfer,
// counting the register pointer as byte 0. Negative i disables it.
func (m *Memory) RefuseWriteAt(i int) { m.refuseAt = i }

// Pointer returns the current register pointer.
func (m *Memory) Pointer() uint8 { return m.ptr }

func (m *Memory) Start(read bool) bool {
	if m.refuseAddr || (read && m.refuseRead) {
		return false
	}
	if !read {
		m.first = true
		m.written = 0
	}
	return true
}

func (m *Memory) Write(b byte) bool {
	i := m.written
	m.written++
	if i == m.refuseAt {
		return false
	}
	if m.first {
		m.ptr = b
		m.first = false
		return true
	}
	m.Mem[m.ptr] = b
	m.ptr++
	return true
}

func (m *Memory) Read() byte {
	b := m.Mem[m.ptr]
	m.ptr++
	return b
}

func (m *Memory) Stop() {
	m.first = false
}
