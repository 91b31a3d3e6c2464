package core

// readRegister writes the register pointer and, after a RESTART, reads
// len(buf) bytes from the slave. If the pointer write is refused the read
// phase is never issued.
func (m *Master) readRegister(addr Address, reg uint8, buf []byte) error {
	if len(buf) > MaxTransferBytes {
		return m.reject(addr, len(buf))
	}

	m.ptr[0] = reg
	if err := m.execute(Transaction{Addr: addr, Dir: Write, End: SoftwareEnd, Buf: m.ptr[:]}, true); err != nil {
		return err
	}
	return m.execute(Transaction{Addr: addr, Dir: Read, End: AutoEnd, Buf: buf}, false)
}

// writeRegister sends the register pointer followed by data in a single
// write transfer; the slave's pointer auto-increments across data.
func (m *Master) writeRegister(addr Address, reg uint8, data []byte) error {
	n := 1 + len(data)
	if n > MaxTransferBytes {
		return m.reject(addr, n)
	}

	m.scratch[0] = reg
	copy(m.scratch[1:], data)
	return m.execute(Transaction{Addr: addr, Dir: Write, End: AutoEnd, Buf: m.scratch[:n]}, true)
}

// writeRead is the register-less composite used by Tx: an optional write,
// an optional read, joined by a RESTART when both are present.
func (m *Master) writeRead(addr Address, w, r []byte) error {
	if len(w) > MaxTransferBytes {
		return m.reject(addr, len(w))
	}
	if len(r) > MaxTransferBytes {
		return m.reject(addr, len(r))
	}

	switch {
	case len(w) > 0 && len(r) > 0:
		if err := m.execute(Transaction{Addr: addr, Dir: Write, End: SoftwareEnd, Buf: w}, true); err != nil {
			return err
		}
		return m.execute(Transaction{Addr: addr, Dir: Read, End: AutoEnd, Buf: r}, false)
	case len(w) > 0:
		return m.execute(Transaction{Addr: addr, Dir: Write, End: AutoEnd, Buf: w}, true)
	case len(r) > 0:
		return m.execute(Transaction{Addr: addr, Dir: Read, End: AutoEnd, Buf: r}, true)
	}
	return nil
}

// reject refuses a request that would need the RELOAD mechanism. Nothing is
// sent: the bus is idle, so there is no transfer to stop.
func (m *Master) reject(addr Address, n int) error {
	if m.debugging() {
		m.debugf("reject addr=" + hex8(uint8(addr)) + " bytes=" + itoa(n))
	}
	return ErrTooLong
}
