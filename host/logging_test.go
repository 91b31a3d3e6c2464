package host

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := DefaultLogger
	SetLogger(NewLogger(&buf))
	SetLogLevel(level)
	t.Cleanup(func() {
		SetLogger(prev)
		SetLogLevel(slog.LevelInfo)
	})
	return &buf
}

func TestLogComponent(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)

	LogInfo(ComponentMonitor, "started", "samples", 3)
	LogDebug(ComponentMonitor, "hidden")

	out := buf.String()
	if !strings.Contains(out, "component=monitor") || !strings.Contains(out, "samples=3") {
		t.Errorf("Missing attributes in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug message logged at info level: %q", out)
	}
}

func TestDebugWriter(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)

	DebugWriter()("[I2C] I2C1 reject addr=0x68 bytes=300")

	out := buf.String()
	if !strings.Contains(out, "component=bus") || !strings.Contains(out, "I2C1 reject") {
		t.Errorf("Unexpected log output %q", out)
	}
	if strings.Contains(out, "[I2C]") {
		t.Errorf("Expected the core prefix to be dropped: %q", out)
	}
}
