package core

// DebugWriter is a function type for writing debug messages.
// Platforms point it at a UART, USB CDC or a host logger.
type DebugWriter func(string)

// debugf writes msg if a writer is installed. Callers build the message
// lazily behind m.debugging() so nothing is formatted on the fast path.
func (m *Master) debugf(msg string) {
	if m.debug != nil {
		m.debug("[I2C] " + m.name + " " + msg)
	}
}

func (m *Master) debugging() bool {
	return m.debug != nil
}

// SetDebugWriter installs or removes (nil) the debug output of m.
func (m *Master) SetDebugWriter(w DebugWriter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debug = w
}
