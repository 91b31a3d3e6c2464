package core

// busFree reports whether the controller sees the bus idle. The check is
// only meaningful because nothing else drives this controller.
func busFree(r Registers) bool {
	return r.Load(RegISR)&ISR_BUSY == 0
}

// begin programs the transfer fields and triggers START. On a bus held after
// a SoftwareEnd transfer the same bit produces a RESTART.
func (t *Transfer) begin(r Registers) {
	cr2 := t.tx.cr2()
	r.Store(RegCR2, cr2)
	r.Store(RegCR2, cr2|CR2_START)
	t.started = true
	t.state = StateAwaitAddrAck
}

func requestStop(r Registers) {
	r.Store(RegCR2, r.Load(RegCR2)|CR2_STOP)
}

func clearStop(r Registers) {
	r.Store(RegICR, ICR_STOPCF)
}

func clearNack(r Registers) {
	r.Store(RegICR, ICR_NACKCF)
}
