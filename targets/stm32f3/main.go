//go:build tinygo && stm32f3

// Firmware that samples an MPU-6050 on I2C1 (PB8/PB9) every 100 ms and
// reports the acceleration on the console, either as text or as protocol
// frames when built with -tags frames.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"i2cmaster/core"
	"i2cmaster/protocol"
	"i2cmaster/sensor/mpu6050"
)

const period = 100 * time.Millisecond

var (
	seq     uint8
	scratch = protocol.NewScratchOutput()
)

func main() {
	initI2C1Pins()

	bus, err := core.New(core.I2C1, core.Config{SpinLimit: 100000})
	if err != nil {
		halt("i2c setup", err)
	}

	sensor := mpu6050.New(bus, mpu6050.DefaultAddress)
	for {
		if err = sensor.Init(); err == nil {
			break
		}
		println("mpu6050 init:", err.Error())
		time.Sleep(time.Second)
	}

	for {
		a, err := sensor.ReadAcceleration()
		report(a, err)
		time.Sleep(period)
	}
}

func report(a mpu6050.Acceleration, err error) {
	if framesOutput {
		s := protocol.Sample{Seq: seq, Status: status(err)}
		if err == nil {
			s.X, s.Y, s.Z = a.X, a.Y, a.Z
		}
		seq = (seq + 1) & protocol.SeqMask

		scratch.Reset()
		protocol.EncodeSample(scratch, s)
		os.Stdout.Write(scratch.Result())
		return
	}

	if err != nil {
		println("read failed:", err.Error())
		return
	}
	x, y, z := a.ToG()
	fmt.Printf("xg = %f yg = %f, zg = %f\n", x, y, z)
}

func status(err error) protocol.Status {
	switch {
	case err == nil:
		return protocol.StatusOK
	case errors.Is(err, core.ErrAborted):
		return protocol.StatusAborted
	case errors.Is(err, core.ErrTimeout):
		return protocol.StatusTimeout
	}
	return protocol.StatusError
}

func halt(what string, err error) {
	for {
		println(what+":", err.Error())
		time.Sleep(time.Second)
	}
}
