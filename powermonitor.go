// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

// Package powermonitor samples instantaneous GPU power and derived CPU
// package power at a fixed interval, either for a bounded duration or for
// the lifetime of an arbitrary unit of work, and persists the resulting
// time series as comma-delimited text.
package powermonitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/Al3ssandro-create/powermonitor/internal/device"
	"github.com/Al3ssandro-create/powermonitor/internal/exporter"
	"github.com/Al3ssandro-create/powermonitor/internal/monitor"
)

// PowerSeries is the accumulated time series of one monitoring session
type PowerSeries = monitor.PowerSeries

// CPUPowerMeter reads the cumulative energy counter of the CPU package
type CPUPowerMeter = device.CPUPowerMeter

// GPUPowerMeter reads instantaneous power draw of a GPU device
type GPUPowerMeter = device.GPUPowerMeter

// DefaultInterval is the poll interval used when none is given
const DefaultInterval = monitor.DefaultInterval

type options struct {
	logger    *slog.Logger
	cpu       device.CPUPowerMeter
	gpu       device.GPUPowerMeter
	sysfsPath string
	gpuDevice uint
	interval  time.Duration
}

// Option configures a monitoring session
type Option func(*options)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCPUMeter substitutes the CPU energy meter. The default reads the
// RAPL package counter from sysfs.
func WithCPUMeter(m CPUPowerMeter) Option {
	return func(o *options) {
		o.cpu = m
	}
}

// WithGPUMeter substitutes the GPU power meter. The default uses NVIDIA
// DCGM in embedded mode.
func WithGPUMeter(m GPUPowerMeter) Option {
	return func(o *options) {
		o.gpu = m
	}
}

// WithSysFSPath sets the sysfs mount point the RAPL counter is read from
func WithSysFSPath(path string) Option {
	return func(o *options) {
		o.sysfsPath = path
	}
}

// WithGPUDevice sets the GPU device index to sample
func WithGPUDevice(id uint) Option {
	return func(o *options) {
		o.gpuDevice = id
	}
}

// WithInterval sets the poll interval used by MonitorDuring
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		o.interval = d
	}
}

func resolve(opts []Option) (*options, error) {
	o := &options{
		logger:    slog.Default(),
		sysfsPath: "/sys",
		interval:  DefaultInterval,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.cpu == nil {
		cpu, err := device.NewRaplPowerMeter(o.sysfsPath)
		if err != nil {
			return nil, err
		}
		o.cpu = cpu
	}
	if o.gpu == nil {
		o.gpu = device.NewDCGMGPUPowerMeter(device.DCGMGPUPowerMeterOpts{
			Logger: o.logger,
			Device: o.gpuDevice,
		})
	}
	return o, nil
}

// MonitorPower samples GPU and CPU power every interval for the given
// duration and returns the accumulated series. Pass interval <= 0 to use
// DefaultInterval.
func MonitorPower(ctx context.Context, duration, interval time.Duration, opts ...Option) (*PowerSeries, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	pm := monitor.NewPowerMonitor(o.cpu, o.gpu,
		monitor.WithLogger(o.logger),
		monitor.WithGPUDevice(o.gpuDevice),
	)
	return pm.RunFixedDuration(ctx, duration, interval)
}

// MonitorDuring runs work on the calling goroutine while sampling power in
// the background, then writes the accumulated series to outputPath as CSV.
// The background sampler never outlives the call; see
// monitor.PowerMonitor.MonitorDuring for the teardown guarantees.
func MonitorDuring(ctx context.Context, outputPath string, work func() error, opts ...Option) error {
	o, err := resolve(opts)
	if err != nil {
		return err
	}

	pm := monitor.NewPowerMonitor(o.cpu, o.gpu,
		monitor.WithLogger(o.logger),
		monitor.WithGPUDevice(o.gpuDevice),
		monitor.WithInterval(o.interval),
		monitor.WithExporter(exporter.NewCSVExporter(o.logger)),
	)
	return pm.MonitorDuring(ctx, outputPath, work)
}

// SaveToCSV writes the series to path, overwriting any existing file
func SaveToCSV(path string, series *PowerSeries) error {
	return exporter.NewCSVExporter(nil).Export(path, series)
}
