// Package config holds the JSON configuration of the monitor tools.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"periph.io/x/conn/v3/physic"

	"i2cmaster/core"
)

// Backends
const (
	BackendSim    = "sim"
	BackendPeriph = "periph"
)

// Monitor outputs
const (
	OutputText   = "text"
	OutputFrames = "frames"
)

// SensorMPU6050 is the only supported sensor kind.
const SensorMPU6050 = "mpu6050"

// Config is the top-level configuration document.
type Config struct {
	Backend   string        `json:"backend"`
	PeriphBus string        `json:"periph_bus"` // i2creg name; empty picks the first bus
	Bus       BusConfig     `json:"bus"`
	Sensor    SensorConfig  `json:"sensor"`
	Monitor   MonitorConfig `json:"monitor"`
	Serial    SerialConfig  `json:"serial"`
}

// BusConfig configures the I2C master.
type BusConfig struct {
	Name         string `json:"name"`
	InputClockHz uint32 `json:"input_clock_hz"`
	FrequencyHz  uint32 `json:"frequency_hz"`
	SpinLimit    uint32 `json:"spin_limit"`
}

// SensorConfig selects the device sampled by the monitor.
type SensorConfig struct {
	Kind    string `json:"kind"`
	Address uint8  `json:"address"`
}

// MonitorConfig controls the sampling loop.
type MonitorConfig struct {
	PeriodMs uint32 `json:"period_ms"`
	Samples  int    `json:"samples"` // 0 samples until cancelled
	Output   string `json:"output"`
}

// SerialConfig describes the diagnostics port. An empty Device means stdout.
type SerialConfig struct {
	Device        string `json:"device"`
	Baud          int    `json:"baud"`
	ReadTimeoutMs int    `json:"read_timeout_ms"`
}

// Load parses a JSON configuration, fills in defaults and validates it.
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and parses the configuration file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Load(data)
}

// Default returns the stock setup: an MPU-6050 at 0x68 on I2C1, 8 MHz
// kernel clock, 100 kHz bus, sampled every 100 ms on the simulator.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Backend == "" {
		cfg.Backend = BackendSim
	}

	if cfg.Bus.Name == "" {
		cfg.Bus.Name = core.DefaultName
	}
	if cfg.Bus.InputClockHz == 0 {
		cfg.Bus.InputClockHz = uint32(core.DefaultInputClock / physic.Hertz)
	}
	if cfg.Bus.FrequencyHz == 0 {
		cfg.Bus.FrequencyHz = uint32(core.DefaultFrequency / physic.Hertz)
	}

	if cfg.Sensor.Kind == "" {
		cfg.Sensor.Kind = SensorMPU6050
	}
	if cfg.Sensor.Address == 0 {
		cfg.Sensor.Address = 0x68
	}

	if cfg.Monitor.PeriodMs == 0 {
		cfg.Monitor.PeriodMs = 100
	}
	if cfg.Monitor.Output == "" {
		cfg.Monitor.Output = OutputText
	}

	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 115200
	}
	if cfg.Serial.ReadTimeoutMs == 0 {
		cfg.Serial.ReadTimeoutMs = 100
	}
}

var (
	ErrBackend = errors.New("config: unknown backend")
	ErrOutput  = errors.New("config: unknown monitor output")
	ErrSensor  = errors.New("config: unknown sensor kind")
	ErrAddress = errors.New("config: sensor address outside 7-bit range")
	ErrSamples = errors.New("config: negative sample count")
)

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSim, BackendPeriph:
	default:
		return fmt.Errorf("%w %q", ErrBackend, c.Backend)
	}
	switch c.Monitor.Output {
	case OutputText, OutputFrames:
	default:
		return fmt.Errorf("%w %q", ErrOutput, c.Monitor.Output)
	}
	if c.Sensor.Kind != SensorMPU6050 {
		return fmt.Errorf("%w %q", ErrSensor, c.Sensor.Kind)
	}
	if !core.Address(c.Sensor.Address).Valid() {
		return fmt.Errorf("%w: %#x", ErrAddress, c.Sensor.Address)
	}
	if c.Monitor.Samples < 0 {
		return ErrSamples
	}
	if _, err := core.ComputeTiming(c.InputClock(), c.Frequency()); err != nil {
		return fmt.Errorf("config: bus %d Hz from %d Hz: %w", c.Bus.FrequencyHz, c.Bus.InputClockHz, err)
	}
	return nil
}

// InputClock returns the configured kernel clock.
func (c *Config) InputClock() physic.Frequency {
	return physic.Frequency(c.Bus.InputClockHz) * physic.Hertz
}

// Frequency returns the configured bus frequency.
func (c *Config) Frequency() physic.Frequency {
	return physic.Frequency(c.Bus.FrequencyHz) * physic.Hertz
}

// Period returns the sampling period.
func (c *Config) Period() time.Duration {
	return time.Duration(c.Monitor.PeriodMs) * time.Millisecond
}

// ReadTimeout returns the serial read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Serial.ReadTimeoutMs) * time.Millisecond
}

// MasterConfig converts the bus section for core.New.
func (c *Config) MasterConfig(debug core.DebugWriter) core.Config {
	return core.Config{
		Name:       c.Bus.Name,
		InputClock: c.InputClock(),
		Frequency:  c.Frequency(),
		SpinLimit:  c.Bus.SpinLimit,
		Debug:      debug,
	}
}
