package core

// Address is a 7-bit I2C slave address.
type Address uint8

// Valid reports whether a fits the 7-bit address field.
func (a Address) Valid() bool {
	return a <= 0x7F
}

// Direction of a single transfer.
type Direction uint8

const (
	Write Direction = iota
	Read
)

func (d Direction) String() string {
	if d == Read {
		return "read"
	}
	return "write"
}

// EndMode selects what the controller does after the last programmed byte.
type EndMode uint8

const (
	// SoftwareEnd leaves the bus held after the last byte (TC set) so the
	// next transfer can be issued as a RESTART.
	SoftwareEnd EndMode = iota

	// AutoEnd makes the hardware NACK the last received byte and send STOP.
	AutoEnd
)

// Transaction describes one direction-homogeneous transfer. Buf is borrowed
// for the duration of the transfer only; its length is the byte count.
type Transaction struct {
	Addr Address
	Dir  Direction
	End  EndMode
	Buf  []byte
}

// cr2 builds the CR2 value programming tx, without START.
func (tx *Transaction) cr2() uint32 {
	v := uint32(tx.Addr)<<CR2_SADD_POS&CR2_SADD_MASK |
		uint32(len(tx.Buf))<<CR2_NBYTES_POS&CR2_NBYTES
	if tx.Dir == Read {
		v |= CR2_RD_WRN
	}
	if tx.End == AutoEnd {
		v |= CR2_AUTOEND
	}
	return v
}

func (tx *Transaction) validate() error {
	if !tx.Addr.Valid() {
		return ErrInvalidAddress
	}
	if len(tx.Buf) > MaxTransferBytes {
		return ErrTooLong
	}
	return nil
}

// State of a Transfer.
type State uint8

const (
	StateAwaitBusFree State = iota
	StateAwaitAddrAck
	StateAwaitByteReady
	StateAwaitTransferComplete
	StateAwaitStop
	StateAborted
	StateDone
)

var stateNames = [...]string{
	StateAwaitBusFree:          "AwaitBusFree",
	StateAwaitAddrAck:          "AwaitAddrAck",
	StateAwaitByteReady:        "AwaitByteReady",
	StateAwaitTransferComplete: "AwaitTransferComplete",
	StateAwaitStop:             "AwaitStop",
	StateAborted:               "Aborted",
	StateDone:                  "Done",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(" + itoa(int(s)) + ")"
}

// Terminal reports whether no further Step will change the state.
func (s State) Terminal() bool {
	return s == StateAborted || s == StateDone
}

// Transfer drives one Transaction through the controller. Each call to Step
// polls the status register once and performs at most one register action,
// so the same transitions serve the blocking driver (which spins on Step)
// and an interrupt handler (which calls Step on each event).
type Transfer struct {
	tx      Transaction
	state   State
	pos     int
	started bool
	err     error
}

// NewTransfer prepares a transfer of tx. With guard set the first Step waits
// for the bus to be idle; without it the transfer is issued as a RESTART on a
// bus held by a previous SoftwareEnd transfer.
func NewTransfer(tx Transaction, guard bool) *Transfer {
	t := &Transfer{}
	t.Reset(tx, guard)
	return t
}

// Reset re-arms t for a new transaction without allocating.
func (t *Transfer) Reset(tx Transaction, guard bool) {
	*t = Transfer{tx: tx}
	if err := tx.validate(); err != nil {
		t.err = err
		t.state = StateAborted
		return
	}
	switch {
	case len(tx.Buf) == 0:
		t.state = StateDone
	case guard:
		t.state = StateAwaitBusFree
	default:
		t.state = StateAwaitAddrAck
	}
}

// State returns the current state.
func (t *Transfer) State() State { return t.state }

// Err returns the reason a transfer ended in StateAborted.
func (t *Transfer) Err() error { return t.err }

// Count returns the number of bytes moved through the data registers so far.
func (t *Transfer) Count() int { return t.pos }

// Started reports whether START has been issued.
func (t *Transfer) Started() bool { return t.started }

// Step advances the transfer by at most one register action.
func (t *Transfer) Step(r Registers) State {
	switch t.state {
	case StateAwaitBusFree:
		if busFree(r) {
			t.begin(r)
		}

	case StateAwaitAddrAck, StateAwaitByteReady:
		if !t.started {
			t.begin(r)
			break
		}
		isr := r.Load(RegISR)
		if isr&ISR_NACKF != 0 {
			t.abort(r)
			break
		}
		if t.tx.Dir == Write {
			if isr&ISR_TXIS == 0 {
				break
			}
			r.Store(RegTXDR, uint32(t.tx.Buf[t.pos]))
		} else {
			if isr&ISR_RXNE == 0 {
				break
			}
			t.tx.Buf[t.pos] = byte(r.Load(RegRXDR))
		}
		t.pos++
		switch {
		case t.pos < len(t.tx.Buf):
			t.state = StateAwaitByteReady
		case t.tx.End == SoftwareEnd:
			t.state = StateAwaitTransferComplete
		default:
			t.state = StateAwaitStop
		}

	case StateAwaitTransferComplete:
		isr := r.Load(RegISR)
		if isr&ISR_NACKF != 0 {
			t.abort(r)
			break
		}
		// TC is cleared by the START or STOP of whatever comes next.
		if isr&ISR_TC != 0 {
			t.state = StateDone
		}

	case StateAwaitStop:
		isr := r.Load(RegISR)
		if isr&ISR_NACKF != 0 {
			clearNack(r)
			if t.err == nil {
				t.err = t.abortError()
			}
			requestStop(r)
		}
		if isr&ISR_STOPF != 0 {
			clearStop(r)
			if t.err != nil {
				t.state = StateAborted
			} else {
				t.state = StateDone
			}
		}
	}
	return t.state
}

// abort clears the NACK, requests STOP and waits for it to be detected.
func (t *Transfer) abort(r Registers) {
	clearNack(r)
	requestStop(r)
	t.err = t.abortError()
	t.state = StateAwaitStop
}

func (t *Transfer) abortError() error {
	e := &AbortError{Addr: t.tx.Addr, Dir: t.tx.Dir, Phase: PhaseData}
	if t.state == StateAwaitAddrAck {
		e.Phase = PhaseAddress
	} else {
		// The byte just handed to the controller is the one refused.
		e.Offset = t.pos - 1
	}
	return e
}

// execute runs tx to completion on the calling goroutine, spinning on the
// status register. guard selects a fresh START (after the bus is idle) over
// a RESTART.
func (m *Master) execute(tx Transaction, guard bool) error {
	t := &m.xfer
	t.Reset(tx, guard)

	var spins uint32
	state, pos, started := t.state, t.pos, t.started
	for !state.Terminal() {
		t.Step(m.regs)
		if t.state != state || t.pos != pos || t.started != started {
			state, pos, started = t.state, t.pos, t.started
			spins = 0
			continue
		}
		spins++
		if m.spinLimit != 0 && spins >= m.spinLimit {
			return m.timeout(t)
		}
	}

	if t.err != nil && m.debugging() {
		m.debugf(t.err.Error())
	}
	return t.err
}

// timeout gives up on t. If START went out the controller may still own the
// bus, so STOP is requested without waiting for it.
func (m *Master) timeout(t *Transfer) error {
	if t.started {
		requestStop(m.regs)
	}
	err := &TimeoutError{State: t.state}
	if m.debugging() {
		m.debugf(err.Error() + " addr=" + hex8(uint8(t.tx.Addr)) +
			" isr=" + hex32(m.regs.Load(RegISR)))
	}
	return err
}
