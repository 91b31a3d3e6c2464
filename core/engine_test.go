package core_test

import (
	"errors"
	"testing"

	"i2cmaster/core"
	"i2cmaster/core/sim"
)

func enabledController() (*sim.Controller, *sim.Memory) {
	ctl := sim.New()
	ctl.Store(core.RegCR1, core.CR1_PE)
	mem := sim.NewMemory()
	ctl.Attach(testAddr, mem)
	return ctl, mem
}

func stepAll(ctl *sim.Controller, tr *core.Transfer) []core.State {
	states := []core.State{tr.State()}
	for i := 0; i < 64 && !tr.State().Terminal(); i++ {
		prev := tr.State()
		if s := tr.Step(ctl); s != prev {
			states = append(states, s)
		}
	}
	return states
}

func expectStates(t *testing.T, got []core.State, want ...core.State) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected states %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected states %v, got %v", want, got)
		}
	}
}

func TestTransferWriteAutoEnd(t *testing.T) {
	ctl, mem := enabledController()

	tr := core.NewTransfer(core.Transaction{
		Addr: testAddr, Dir: core.Write, End: core.AutoEnd, Buf: []byte{0x05, 0xEE},
	}, true)
	states := stepAll(ctl, tr)

	expectStates(t, states,
		core.StateAwaitBusFree,
		core.StateAwaitAddrAck,
		core.StateAwaitByteReady,
		core.StateAwaitStop,
		core.StateDone,
	)
	if tr.Count() != 2 || !tr.Started() || tr.Err() != nil {
		t.Errorf("Unexpected transfer result: count=%d started=%v err=%v", tr.Count(), tr.Started(), tr.Err())
	}
	if mem.Mem[0x05] != 0xEE {
		t.Errorf("Expected Mem[5]=0xee, got %#02x", mem.Mem[0x05])
	}
}

func TestTransferSoftwareEndHoldsBus(t *testing.T) {
	ctl, _ := enabledController()

	tr := core.NewTransfer(core.Transaction{
		Addr: testAddr, Dir: core.Write, End: core.SoftwareEnd, Buf: []byte{0x00},
	}, true)
	states := stepAll(ctl, tr)

	expectStates(t, states,
		core.StateAwaitBusFree,
		core.StateAwaitAddrAck,
		core.StateAwaitTransferComplete,
		core.StateDone,
	)
	if !ctl.Busy() {
		t.Errorf("Expected bus held after SoftwareEnd transfer")
	}
	if ctl.Count(sim.EventStop) != 0 {
		t.Errorf("Expected no STOP after SoftwareEnd transfer")
	}

	// A restart transfer takes over the held bus.
	rd := core.NewTransfer(core.Transaction{
		Addr: testAddr, Dir: core.Read, End: core.AutoEnd, Buf: make([]byte, 3),
	}, false)
	states = stepAll(ctl, rd)
	expectStates(t, states,
		core.StateAwaitAddrAck,
		core.StateAwaitByteReady,
		core.StateAwaitStop,
		core.StateDone,
	)
	if ctl.Busy() {
		t.Errorf("Expected bus idle after AutoEnd read")
	}
	if ctl.Count(sim.EventRestart) != 1 {
		t.Errorf("Expected one RESTART, trace:\n%s", render(ctl.Trace()))
	}
}

func TestTransferAddressNack(t *testing.T) {
	ctl, _ := enabledController()

	tr := core.NewTransfer(core.Transaction{
		Addr: 0x10, Dir: core.Write, End: core.SoftwareEnd, Buf: []byte{0x00},
	}, true)
	states := stepAll(ctl, tr)

	expectStates(t, states,
		core.StateAwaitBusFree,
		core.StateAwaitAddrAck,
		core.StateAwaitStop,
		core.StateAborted,
	)
	var ae *core.AbortError
	if !errors.As(tr.Err(), &ae) || ae.Phase != core.PhaseAddress {
		t.Errorf("Expected address phase abort, got %v", tr.Err())
	}
	if ctl.Busy() {
		t.Errorf("Expected bus idle after abort")
	}
}

func TestTransferWaitsForBus(t *testing.T) {
	ctl, _ := enabledController()
	ctl.HoldBus(true)

	tr := core.NewTransfer(core.Transaction{
		Addr: testAddr, Dir: core.Write, End: core.AutoEnd, Buf: []byte{0x00},
	}, true)
	for i := 0; i < 10; i++ {
		if s := tr.Step(ctl); s != core.StateAwaitBusFree {
			t.Fatalf("Expected AwaitBusFree while bus is held, got %s", s)
		}
	}
	if tr.Started() {
		t.Errorf("Expected no START while bus is held")
	}

	ctl.HoldBus(false)
	if s := tr.Step(ctl); s != core.StateAwaitAddrAck {
		t.Errorf("Expected AwaitAddrAck after release, got %s", s)
	}
}

func TestTransferRejectedUpFront(t *testing.T) {
	testCases := []struct {
		name string
		tx   core.Transaction
		want error
	}{
		{"too long", core.Transaction{Addr: testAddr, Buf: make([]byte, 256)}, core.ErrTooLong},
		{"bad address", core.Transaction{Addr: 0x90, Buf: make([]byte, 1)}, core.ErrInvalidAddress},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctl, _ := enabledController()
			ctl.ResetTrace()
			tr := core.NewTransfer(tc.tx, true)
			if tr.State() != core.StateAborted {
				t.Fatalf("Expected Aborted, got %s", tr.State())
			}
			if !errors.Is(tr.Err(), tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, tr.Err())
			}
			tr.Step(ctl)
			if ctl.Accesses() != 0 {
				t.Errorf("Expected no register access, got %d", ctl.Accesses())
			}
		})
	}
}

func TestTransferEmpty(t *testing.T) {
	tr := core.NewTransfer(core.Transaction{Addr: testAddr}, true)
	if tr.State() != core.StateDone {
		t.Errorf("Expected Done for empty transfer, got %s", tr.State())
	}
}

func TestTransferReset(t *testing.T) {
	ctl, mem := enabledController()
	mem.Mem[0] = 0x42

	var tr core.Transfer
	tr.Reset(core.Transaction{Addr: testAddr, Dir: core.Write, End: core.SoftwareEnd, Buf: []byte{0}}, true)
	stepAll(ctl, &tr)

	buf := make([]byte, 1)
	tr.Reset(core.Transaction{Addr: testAddr, Dir: core.Read, End: core.AutoEnd, Buf: buf}, false)
	if tr.Count() != 0 || tr.Started() {
		t.Fatalf("Reset did not clear progress")
	}
	stepAll(ctl, &tr)
	if tr.State() != core.StateDone || buf[0] != 0x42 {
		t.Errorf("Expected Done with 0x42, got %s with %#02x", tr.State(), buf[0])
	}
}
