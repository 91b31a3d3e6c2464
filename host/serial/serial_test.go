package serial

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	if cfg.Device != "/dev/ttyACM0" || cfg.Baud != 115200 || cfg.ReadTimeout != 100*time.Millisecond {
		t.Errorf("Unexpected default config: %+v", cfg)
	}
}

func TestOpenNoDevice(t *testing.T) {
	if _, err := Open(Config{}); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Expected ErrNoDevice, got %v", err)
	}
}

func TestOpenMissingDevice(t *testing.T) {
	if _, err := Open(DefaultConfig("/dev/does-not-exist-i2cmon")); err == nil {
		t.Errorf("Expected an error opening a missing device")
	}
}
