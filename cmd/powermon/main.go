// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/olekukonko/tablewriter"

	"k8s.io/utils/ptr"

	"github.com/Al3ssandro-create/powermonitor/config"
	"github.com/Al3ssandro-create/powermonitor/internal/device"
	"github.com/Al3ssandro-create/powermonitor/internal/exporter"
	"github.com/Al3ssandro-create/powermonitor/internal/monitor"
)

func main() {
	app := kingpin.New("powermon", "Samples GPU and CPU power draw into a CSV time series.")
	configFile := app.Flag("config.file", "Path to YAML configuration file").String()
	updateConfig := config.RegisterFlags(app)
	command := app.Arg("command", "Command to run; sampling stops when it exits").Strings()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg := config.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.FromFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := updateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Debug("Configuration loaded", "config", cfg.String())

	cpu, gpu, err := newMeters(cfg, logger)
	if err != nil {
		logger.Error("Failed to create power meters", "error", err)
		os.Exit(1)
	}

	csv := exporter.NewCSVExporter(logger)
	capture := &capturingExporter{delegate: csv}
	pm := monitor.NewPowerMonitor(cpu, gpu,
		monitor.WithLogger(logger),
		monitor.WithGPUDevice(cfg.GPU.Device),
		monitor.WithInterval(cfg.Sampling.Interval),
		monitor.WithExporter(capture),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var series *monitor.PowerSeries

	var g run.Group
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	if argv := *command; len(argv) > 0 {
		// Monitor the child command; sampling stops when it exits
		g.Add(func() error {
			err := pm.MonitorDuring(ctx, cfg.Output.Path, func() error {
				cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
				cmd.Stdin = os.Stdin
				cmd.Stdout = os.Stdout
				cmd.Stderr = os.Stderr
				return cmd.Run()
			})
			series = capture.series
			return err
		}, func(error) {
			cancel()
		})
	} else {
		g.Add(func() error {
			s, err := pm.RunFixedDuration(ctx, cfg.Sampling.Duration, cfg.Sampling.Interval)
			series = s
			if err != nil {
				return err
			}
			return csv.Export(cfg.Output.Path, s)
		}, func(error) {
			cancel()
		})
	}

	err = g.Run()
	var sigErr run.SignalError
	if err != nil && !errors.As(err, &sigErr) {
		logger.Error("Sampling run failed", "error", err)
		os.Exit(1)
	}

	if series != nil {
		printSummary(series, cfg.Output.Path)
	}
}

// capturingExporter keeps a reference to the exported series so the
// summary can be printed after a monitored command finishes
type capturingExporter struct {
	delegate monitor.SeriesExporter
	series   *monitor.PowerSeries
}

func (c *capturingExporter) Export(path string, series *monitor.PowerSeries) error {
	c.series = series
	return c.delegate.Export(path, series)
}

// newLogger builds an slog logger from the log configuration
func newLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// newMeters builds the CPU and GPU meters, substituting fakes when the dev
// settings enable them
func newMeters(cfg *config.Config, logger *slog.Logger) (device.CPUPowerMeter, device.GPUPowerMeter, error) {
	var cpu device.CPUPowerMeter
	if ptr.Deref(cfg.Dev.FakeCpuMeter.Enabled, false) {
		cpu = device.NewFakeCPUMeter(
			device.WithFakeCPULogger(logger),
			device.WithFakeCPUEnergyStep(cfg.Dev.FakeCpuMeter.EnergyStep),
		)
	} else {
		c, err := device.NewRaplPowerMeter(cfg.Host.SysFS)
		if err != nil {
			return nil, nil, err
		}
		cpu = c
	}

	var gpu device.GPUPowerMeter
	if ptr.Deref(cfg.Dev.FakeGpuMeter.Enabled, false) {
		gpu = device.NewFakeGPUMeter([]uint{cfg.GPU.Device},
			device.WithFakeGPULogger(logger),
			device.WithFakeGPUPowerBase(cfg.Dev.FakeGpuMeter.PowerBase),
			device.WithFakeGPUPowerRange(cfg.Dev.FakeGpuMeter.PowerRange),
		)
	} else {
		gpu = device.NewDCGMGPUPowerMeter(device.DCGMGPUPowerMeterOpts{
			Logger: logger,
			Device: cfg.GPU.Device,
		})
	}

	return cpu, gpu, nil
}

// printSummary renders a short end-of-run summary table
func printSummary(series *monitor.PowerSeries, path string) {
	elapsed := 0.0
	if n := series.Len(); n > 0 {
		elapsed = series.Times()[n-1]
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Metric", "Value")
	_ = table.Append("Samples", strconv.Itoa(series.Len()))
	_ = table.Append("Elapsed (s)", fmt.Sprintf("%.2f", elapsed))
	_ = table.Append("GPU avg (W)", fmt.Sprintf("%.2f", mean(series.GPUPower())))
	_ = table.Append("GPU max (W)", fmt.Sprintf("%.2f", maxOf(series.GPUPower())))
	_ = table.Append("CPU avg (W)", fmt.Sprintf("%.2f", mean(series.CPUPower())))
	_ = table.Append("CPU max (W)", fmt.Sprintf("%.2f", maxOf(series.CPUPower())))
	_ = table.Append("Output", path)
	_ = table.Render()
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func maxOf(vs []float64) float64 {
	m := 0.0
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}
