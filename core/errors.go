package core

import "errors"

var (
	// ErrAborted signals that a transaction was terminated before completion.
	// A NACK was received, or the request could not be expressed as a single
	// transfer. STOP has been issued and the bus is idle.
	ErrAborted = errors.New("i2c: transaction aborted")

	// ErrTooLong is returned for requests needing more than MaxTransferBytes
	// in one transfer. It matches ErrAborted under errors.Is.
	ErrTooLong error = &tooLongError{}

	// ErrTimeout signals that a status wait exceeded Config.SpinLimit polls.
	ErrTimeout = errors.New("i2c: timeout waiting for controller")

	// ErrInvalidAddress signals a slave address outside the 7-bit range.
	ErrInvalidAddress = errors.New("i2c: invalid 7-bit address")

	// ErrInvalidTiming signals that no timing configuration reaches the
	// requested bus frequency from the given input clock.
	ErrInvalidTiming = errors.New("i2c: no timing for requested bus frequency")
)

type tooLongError struct{}

func (*tooLongError) Error() string {
	return "i2c: transaction aborted: byte count exceeds " + itoa(MaxTransferBytes)
}

func (*tooLongError) Is(target error) bool { return target == ErrAborted }

// Phase names the part of a transfer in which a NACK was seen.
type Phase uint8

const (
	PhaseAddress Phase = iota // Slave did not acknowledge its address
	PhaseData                 // Slave did not acknowledge a data byte
)

func (p Phase) String() string {
	if p == PhaseAddress {
		return "address"
	}
	return "data"
}

// AbortError describes a NACK-terminated transfer.
type AbortError struct {
	Addr   Address
	Dir    Direction
	Phase  Phase
	Offset int // Bytes of the transfer completed before the NACK
}

func (e *AbortError) Error() string {
	return "i2c: transaction aborted: nack from " + hex8(uint8(e.Addr)) +
		" during " + e.Dir.String() + " " + e.Phase.String() + " phase after " +
		itoa(e.Offset) + " bytes"
}

func (e *AbortError) Is(target error) bool { return target == ErrAborted }

// TimeoutError reports the state the transfer was stuck in.
type TimeoutError struct {
	State State
}

func (e *TimeoutError) Error() string {
	return "i2c: timeout in state " + e.State.String()
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }
