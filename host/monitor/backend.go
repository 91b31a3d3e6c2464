package monitor

import (
	"fmt"

	"i2cmaster/config"
	"i2cmaster/core"
	"i2cmaster/core/sim"
	"i2cmaster/host"
	"i2cmaster/host/periphbus"
	"i2cmaster/sensor/mpu6050"
)

// Backend is the bus the monitor samples through.
type Backend struct {
	Bus  mpu6050.RegisterBus
	Name string

	// Set for the simulator backend only.
	Controller *sim.Controller
	Model      *sim.MPU6050

	close func() error
}

// OpenBackend builds the bus selected by cfg.Backend. The simulator backend
// models an MPU-6050 lying flat at the configured address.
func OpenBackend(cfg *config.Config) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendSim:
		ctl := sim.New()
		model := sim.NewMPU6050()
		model.SetAcceleration(0, 0, mpu6050.LSBPerG)
		ctl.Attach(core.Address(cfg.Sensor.Address), model)

		m, err := core.New(ctl, cfg.MasterConfig(host.DebugWriter()))
		if err != nil {
			return nil, fmt.Errorf("monitor: %w", err)
		}
		return &Backend{Bus: m, Name: m.String(), Controller: ctl, Model: model}, nil

	case config.BackendPeriph:
		b, err := periphbus.Open(cfg.PeriphBus, cfg.Frequency())
		if err != nil {
			return nil, err
		}
		return &Backend{Bus: b, Name: b.String(), close: b.Close}, nil
	}
	return nil, fmt.Errorf("%w %q", config.ErrBackend, cfg.Backend)
}

// Sensor initializes the configured sensor on the backend.
func (b *Backend) Sensor(cfg *config.Config) (*mpu6050.Device, error) {
	d := mpu6050.New(b.Bus, core.Address(cfg.Sensor.Address))
	if b.Model != nil {
		d.Sleep = b.Model.Advance
	}
	if err := d.Init(); err != nil {
		return nil, fmt.Errorf("monitor: init %s at %#02x on %s: %w", cfg.Sensor.Kind, cfg.Sensor.Address, b.Name, err)
	}
	host.LogInfo(host.ComponentSensor, "sensor ready", "kind", cfg.Sensor.Kind, "addr", cfg.Sensor.Address, "bus", b.Name)
	return d, nil
}

// Close releases the bus.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}
