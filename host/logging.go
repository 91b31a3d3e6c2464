// Package host holds the pieces shared by the host-side tools.
package host

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"i2cmaster/core"
)

// Component identifies a subsystem for log filtering.
type Component string

const (
	ComponentBus     Component = "bus"
	ComponentSensor  Component = "sensor"
	ComponentMonitor Component = "monitor"
	ComponentSerial  Component = "serial"
)

var (
	// DefaultLogger is the logger used by the host tools.
	DefaultLogger *slog.Logger

	logLevel = new(slog.LevelVar)
	logMutex sync.RWMutex
)

func init() {
	logLevel.Set(slog.LevelInfo)
	DefaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// SetLogLevel sets the minimum level of the default logger.
func SetLogLevel(level slog.Level) {
	logMutex.Lock()
	defer logMutex.Unlock()
	logLevel.Set(level)
}

// SetLogger replaces the default logger.
func SetLogger(logger *slog.Logger) {
	logMutex.Lock()
	defer logMutex.Unlock()
	DefaultLogger = logger
}

// NewLogger creates a text logger writing to w at the shared level.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func logger() *slog.Logger {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return DefaultLogger
}

// LogDebug logs a debug message with the given component.
func LogDebug(component Component, msg string, args ...any) {
	logger().Debug(msg, append([]any{"component", string(component)}, args...)...)
}

// LogInfo logs an info message with the given component.
func LogInfo(component Component, msg string, args ...any) {
	logger().Info(msg, append([]any{"component", string(component)}, args...)...)
}

// LogWarn logs a warning message with the given component.
func LogWarn(component Component, msg string, args ...any) {
	logger().Warn(msg, append([]any{"component", string(component)}, args...)...)
}

// LogError logs an error message with the given component.
func LogError(component Component, msg string, args ...any) {
	logger().Error(msg, append([]any{"component", string(component)}, args...)...)
}

// DebugWriter forwards the core driver's debug output to the default logger
// at debug level.
func DebugWriter() core.DebugWriter {
	return func(msg string) {
		LogDebug(ComponentBus, strings.TrimPrefix(msg, "[I2C] "))
	}
}
