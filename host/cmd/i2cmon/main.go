package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"i2cmaster/config"
	"i2cmaster/host"
	"i2cmaster/host/monitor"
	"i2cmaster/host/serial"
)

var (
	configPath = flag.String("config", "", "JSON configuration file")
	backend    = flag.String("backend", "", "Bus backend: sim or periph (overrides config)")
	device     = flag.String("device", "", "Serial device for frames (overrides config; empty = stdout)")
	samples    = flag.Int("samples", -1, "Number of samples, 0 = until interrupted (overrides config)")
	frames     = flag.Bool("frames", false, "Write diagnostics frames instead of text")
	listen     = flag.Bool("listen", false, "Decode frames from the serial device instead of sampling")
	shell      = flag.Bool("shell", false, "Interactive register shell on the bus")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *verbose {
		host.SetLogLevel(slog.LevelDebug)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *listen:
		err = runListen(ctx, cfg)
	case *shell:
		err = runShell(cfg, os.Stdin, os.Stdout)
	default:
		err = runMonitor(ctx, cfg)
	}
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return nil, err
		}
	}

	if *backend != "" {
		cfg.Backend = *backend
	}
	if *device != "" {
		cfg.Serial.Device = *device
	}
	if *samples >= 0 {
		cfg.Monitor.Samples = *samples
	}
	if *frames {
		cfg.Monitor.Output = config.OutputFrames
	}
	return cfg, cfg.Validate()
}

func openSerial(cfg *config.Config) (*serial.NativePort, error) {
	sc := serial.DefaultConfig(cfg.Serial.Device)
	sc.Baud = cfg.Serial.Baud
	sc.ReadTimeout = cfg.ReadTimeout()
	return serial.Open(sc)
}

func runMonitor(ctx context.Context, cfg *config.Config) error {
	b, err := monitor.OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	sensor, err := b.Sensor(cfg)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if cfg.Serial.Device != "" {
		port, err := openSerial(cfg)
		if err != nil {
			return err
		}
		defer port.Close()
		out = port
		host.LogInfo(host.ComponentSerial, "writing to serial port", "device", port.String(), "baud", cfg.Serial.Baud)
	}

	format := monitor.FormatText
	if cfg.Monitor.Output == config.OutputFrames {
		format = monitor.FormatFrames
	}

	stats, err := monitor.New(sensor, out, monitor.Options{
		Period:  cfg.Period(),
		Samples: cfg.Monitor.Samples,
		Format:  format,
	}).Run(ctx)
	host.LogInfo(host.ComponentMonitor, "done", "samples", stats.Samples, "errors", stats.Errors)
	return err
}

func runListen(ctx context.Context, cfg *config.Config) error {
	if cfg.Serial.Device == "" {
		stats, err := monitor.Listen(ctx, os.Stdin, os.Stdout, monitor.ListenOptions{})
		host.LogInfo(host.ComponentMonitor, "done", "samples", stats.Samples, "errors", stats.Errors)
		return err
	}

	port, err := openSerial(cfg)
	if err != nil {
		return err
	}
	defer port.Close()
	if err := port.Flush(); err != nil {
		host.LogWarn(host.ComponentSerial, "flush failed", "err", err)
	}

	stats, err := monitor.Listen(ctx, port, os.Stdout, monitor.ListenOptions{Follow: true})
	host.LogInfo(host.ComponentMonitor, "done", "samples", stats.Samples, "errors", stats.Errors)
	return err
}

func runShell(cfg *config.Config, in io.Reader, out io.Writer) error {
	b, err := monitor.OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	fmt.Fprintf(out, "i2cmon shell on %s, type help for commands\n", b.Name)
	return monitor.Shell(b.Bus, in, out)
}
