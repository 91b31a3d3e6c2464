// Package monitor runs the accelerometer sampling loop of the host tools:
// read the sensor every period and report each reading as a text line or as
// a diagnostics frame.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"i2cmaster/core"
	"i2cmaster/host"
	"i2cmaster/protocol"
	"i2cmaster/sensor/mpu6050"
)

// Sensor produces accelerometer readings. *mpu6050.Device implements it.
type Sensor interface {
	ReadAcceleration() (mpu6050.Acceleration, error)
}

// Format selects how readings are written.
type Format uint8

const (
	FormatText Format = iota
	FormatFrames
)

// Options configure a Monitor.
type Options struct {
	Period  time.Duration
	Samples int // 0 runs until the context is cancelled
	Format  Format
}

// Stats summarizes a run.
type Stats struct {
	Samples int
	Errors  int
}

// Monitor samples one sensor.
type Monitor struct {
	sensor Sensor
	out    io.Writer
	opts   Options

	seq     uint8
	scratch protocol.ScratchOutput
}

// New returns a Monitor writing readings of s to out.
func New(s Sensor, out io.Writer, opts Options) *Monitor {
	return &Monitor{sensor: s, out: out, opts: opts}
}

// StatusOf classifies a read error for the diagnostics link.
func StatusOf(err error) protocol.Status {
	switch {
	case err == nil:
		return protocol.StatusOK
	case errors.Is(err, core.ErrTimeout):
		return protocol.StatusTimeout
	case errors.Is(err, core.ErrAborted):
		return protocol.StatusAborted
	}
	return protocol.StatusError
}

// Run samples until the configured count is reached or ctx is done. Read
// errors are reported and counted but do not stop the loop; write errors do.
func (m *Monitor) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	var tick <-chan time.Time
	if m.opts.Period > 0 {
		t := time.NewTicker(m.opts.Period)
		defer t.Stop()
		tick = t.C
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		a, err := m.sensor.ReadAcceleration()
		stats.Samples++
		if err != nil {
			stats.Errors++
			host.LogWarn(host.ComponentMonitor, "sensor read failed", "err", err)
		}
		if err := m.report(a, err); err != nil {
			return stats, fmt.Errorf("monitor: write: %w", err)
		}

		if m.opts.Samples > 0 && stats.Samples >= m.opts.Samples {
			return stats, nil
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-tick:
			}
		}
	}
}

func (m *Monitor) report(a mpu6050.Acceleration, readErr error) error {
	if m.opts.Format == FormatFrames {
		s := protocol.Sample{Seq: m.seq, Status: StatusOf(readErr)}
		if readErr == nil {
			s.X, s.Y, s.Z = a.X, a.Y, a.Z
		}
		m.seq = (m.seq + 1) & protocol.SeqMask

		m.scratch.Reset()
		protocol.EncodeSample(&m.scratch, s)
		_, err := m.out.Write(m.scratch.Result())
		return err
	}

	if readErr != nil {
		_, err := fmt.Fprintf(m.out, "read failed: %v\n", readErr)
		return err
	}
	return WriteText(m.out, a)
}

// WriteText prints a reading in g, one line per sample.
func WriteText(w io.Writer, a mpu6050.Acceleration) error {
	x, y, z := a.ToG()
	_, err := fmt.Fprintf(w, "xg = %f yg = %f, zg = %f\n", x, y, z)
	return err
}
