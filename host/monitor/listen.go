package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"i2cmaster/host"
	"i2cmaster/protocol"
	"i2cmaster/sensor/mpu6050"
)

// ListenOptions configure Listen.
type ListenOptions struct {
	// Follow treats io.EOF as "no data yet", the way a serial port reports
	// an expired read timeout.
	Follow bool
}

// Listen decodes sample frames arriving on r and prints them to w as text
// lines until r ends or ctx is done.
func Listen(ctx context.Context, r io.Reader, w io.Writer, opts ListenOptions) (Stats, error) {
	var stats Stats
	sc := protocol.NewScanner(1024)
	buf := make([]byte, 256)
	dropped := 0

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		n, err := r.Read(buf[:min(len(buf), sc.Free())])
		sc.Feed(buf[:n])
		for {
			s, ok := sc.Next()
			if !ok {
				break
			}
			stats.Samples++
			if err := printSample(w, s); err != nil {
				return stats, fmt.Errorf("monitor: write: %w", err)
			}
			if s.Status != protocol.StatusOK {
				stats.Errors++
			}
		}
		if d := sc.Dropped(); d != dropped {
			host.LogWarn(host.ComponentSerial, "dropped corrupt frames", "count", d-dropped)
			dropped = d
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF) && opts.Follow:
		case errors.Is(err, io.EOF):
			return stats, nil
		default:
			return stats, fmt.Errorf("monitor: read: %w", err)
		}
	}
}

func printSample(w io.Writer, s protocol.Sample) error {
	if s.Status != protocol.StatusOK {
		_, err := fmt.Fprintf(w, "seq %d: %s\n", s.Seq, s.Status)
		return err
	}
	return WriteText(w, mpu6050.Acceleration{X: s.X, Y: s.Y, Z: s.Z})
}
