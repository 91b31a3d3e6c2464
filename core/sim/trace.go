package sim

import (
	"fmt"

	"i2cmaster/core"
)

// EventKind classifies a bus event.
type EventKind uint8

const (
	EventStart EventKind = iota
	EventRestart
	EventAddrNack
	EventWrite
	EventDataNack
	EventRead
	EventStop
)

// Event is one observable happening on the simulated bus.
type Event struct {
	Kind EventKind
	Addr core.Address
	Read bool // Direction of a START/RESTART
	Data byte // Byte of a WRITE/READ
}

func (e Event) String() string {
	switch e.Kind {
	case EventStart, EventRestart:
		name := "START"
		if e.Kind == EventRestart {
			name = "RESTART"
		}
		dir := "W"
		if e.Read {
			dir = "R"
		}
		return fmt.Sprintf("%s 0x%02x %s", name, uint8(e.Addr), dir)
	case EventAddrNack:
		return fmt.Sprintf("ADDR NACK 0x%02x", uint8(e.Addr))
	case EventWrite:
		return fmt.Sprintf("WRITE 0x%02x", e.Data)
	case EventDataNack:
		return fmt.Sprintf("DATA NACK 0x%02x", e.Data)
	case EventRead:
		return fmt.Sprintf("READ 0x%02x", e.Data)
	case EventStop:
		return "STOP"
	}
	return "unknown event"
}
