package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"i2cmaster/config"
	"i2cmaster/core"
	"i2cmaster/protocol"
	"i2cmaster/sensor/mpu6050"
)

type fakeSensor struct {
	readings []mpu6050.Acceleration
	errs     []error
	n        int
}

func (f *fakeSensor) ReadAcceleration() (mpu6050.Acceleration, error) {
	i := f.n % len(f.readings)
	f.n++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return mpu6050.Acceleration{}, err
	}
	return f.readings[i], nil
}

func TestRunText(t *testing.T) {
	s := &fakeSensor{readings: []mpu6050.Acceleration{{X: 4096, Y: 0, Z: 8192}}}
	var out bytes.Buffer

	stats, err := New(s, &out, Options{Samples: 2}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Samples != 2 || stats.Errors != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	want := "xg = 0.500000 yg = 0.000000, zg = 1.000000\n"
	if out.String() != want+want {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestRunFrames(t *testing.T) {
	nack := &core.AbortError{Addr: 0x68}
	s := &fakeSensor{
		readings: []mpu6050.Acceleration{{X: 1, Y: 2, Z: 3}, {}, {X: -1}},
		errs:     []error{nil, nack, &core.TimeoutError{State: core.StateAwaitBusFree}},
	}
	var out bytes.Buffer

	stats, err := New(s, &out, Options{Samples: 3, Format: FormatFrames}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Errors != 2 {
		t.Errorf("Expected 2 errors, got %d", stats.Errors)
	}

	sc := protocol.NewScanner(256)
	sc.Feed(out.Bytes())
	want := []protocol.Sample{
		{Seq: 0, Status: protocol.StatusOK, X: 1, Y: 2, Z: 3},
		{Seq: 1, Status: protocol.StatusAborted},
		{Seq: 2, Status: protocol.StatusTimeout},
	}
	for i, w := range want {
		got, ok := sc.Next()
		if !ok {
			t.Fatalf("Missing frame %d", i)
		}
		if got != w {
			t.Errorf("Frame %d: expected %+v, got %+v", i, w, got)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	s := &fakeSensor{readings: []mpu6050.Acceleration{{}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := New(s, io.Discard, Options{}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if stats.Samples != 0 {
		t.Errorf("Expected no samples after cancel, got %d", stats.Samples)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestRunWriteError(t *testing.T) {
	s := &fakeSensor{readings: []mpu6050.Acceleration{{}}}
	_, err := New(s, failWriter{}, Options{Samples: 5}).Run(context.Background())
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Expected io.ErrClosedPipe, got %v", err)
	}
}

func TestStatusOf(t *testing.T) {
	testCases := []struct {
		err  error
		want protocol.Status
	}{
		{nil, protocol.StatusOK},
		{core.ErrTooLong, protocol.StatusAborted},
		{fmt.Errorf("wrapped: %w", &core.AbortError{}), protocol.StatusAborted},
		{&core.TimeoutError{}, protocol.StatusTimeout},
		{core.ErrInvalidAddress, protocol.StatusError},
	}

	for _, tc := range testCases {
		if got := StatusOf(tc.err); got != tc.want {
			t.Errorf("StatusOf(%v): expected %s, got %s", tc.err, tc.want, got)
		}
	}
}

func TestListen(t *testing.T) {
	out := protocol.NewScratchOutput()
	protocol.EncodeSample(out, protocol.Sample{Seq: 0, X: 8192, Y: -8192, Z: 0})
	protocol.EncodeSample(out, protocol.Sample{Seq: 1, Status: protocol.StatusAborted})

	var text bytes.Buffer
	stats, err := Listen(context.Background(), bytes.NewReader(out.Result()), &text, ListenOptions{})
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	if stats.Samples != 2 || stats.Errors != 1 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	lines := strings.Split(strings.TrimSpace(text.String()), "\n")
	if len(lines) != 2 || lines[0] != "xg = 1.000000 yg = -1.000000, zg = 0.000000" || lines[1] != "seq 1: aborted" {
		t.Errorf("Unexpected output %q", text.String())
	}
}

func TestSimBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Monitor.Samples = 3

	b, err := OpenBackend(cfg)
	if err != nil {
		t.Fatalf("OpenBackend failed: %v", err)
	}
	defer b.Close()

	d, err := b.Sensor(cfg)
	if err != nil {
		t.Fatalf("Sensor failed: %v", err)
	}

	var out bytes.Buffer
	stats, err := New(d, &out, Options{Samples: cfg.Monitor.Samples}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Samples != 3 || stats.Errors != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if !strings.Contains(out.String(), "zg = 1.000000") {
		t.Errorf("Expected 1 g on Z, got %q", out.String())
	}
	if b.Controller.Busy() {
		t.Errorf("Expected the simulated bus idle after sampling")
	}
}

func TestSimBackendMissingSensor(t *testing.T) {
	cfg := config.Default()
	b, err := OpenBackend(cfg)
	if err != nil {
		t.Fatalf("OpenBackend failed: %v", err)
	}
	b.Model.RefuseAddress(true)

	if _, err := b.Sensor(cfg); !errors.Is(err, core.ErrAborted) {
		t.Errorf("Expected ErrAborted, got %v", err)
	}
}
