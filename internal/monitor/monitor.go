// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/Al3ssandro-create/powermonitor/internal/device"
)

// DefaultInterval is the poll interval used when none is configured. The
// same default applies to bounded-duration sampling and to background
// sampling; it also bounds how long a background sampler takes to notice a
// stop request.
const DefaultInterval = 100 * time.Millisecond

// SeriesExporter persists a completed PowerSeries
type SeriesExporter interface {
	Export(path string, series *PowerSeries) error
}

// PowerMonitor drives power sampling sessions against a CPU energy meter
// and a GPU power meter. A monitor may run many sessions, but never more
// than one at a time per instance.
type PowerMonitor struct {
	logger   *slog.Logger
	clock    clock.WithTicker
	cpu      device.CPUPowerMeter
	gpu      device.GPUPowerMeter
	device   uint
	interval time.Duration
	exporter SeriesExporter
}

// OptionFn is a functional option for configuring a PowerMonitor
type OptionFn func(*PowerMonitor)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) OptionFn {
	return func(pm *PowerMonitor) {
		pm.logger = logger
	}
}

// WithClock sets the clock used for timestamps and tick scheduling
func WithClock(c clock.WithTicker) OptionFn {
	return func(pm *PowerMonitor) {
		pm.clock = c
	}
}

// WithInterval sets the poll interval used by MonitorDuring
func WithInterval(d time.Duration) OptionFn {
	return func(pm *PowerMonitor) {
		pm.interval = d
	}
}

// WithGPUDevice sets the GPU device index to sample
func WithGPUDevice(id uint) OptionFn {
	return func(pm *PowerMonitor) {
		pm.device = id
	}
}

// WithExporter sets the exporter MonitorDuring writes the series with
func WithExporter(e SeriesExporter) OptionFn {
	return func(pm *PowerMonitor) {
		pm.exporter = e
	}
}

// NewPowerMonitor creates a PowerMonitor for the given meters
func NewPowerMonitor(cpu device.CPUPowerMeter, gpu device.GPUPowerMeter, opts ...OptionFn) *PowerMonitor {
	pm := &PowerMonitor{
		logger:   slog.Default(),
		clock:    clock.RealClock{},
		cpu:      cpu,
		gpu:      gpu,
		interval: DefaultInterval,
	}

	for _, opt := range opts {
		opt(pm)
	}

	pm.logger = pm.logger.With("service", "monitor")
	return pm
}

// MonitorDuring runs work on the calling goroutine while sampling power in
// the background, then writes the accumulated series to outputPath.
//
// The background sampler is always stopped and joined before MonitorDuring
// returns, even when work fails or panics. When work or the sampler fails,
// whatever partial series was accumulated is still exported; errors from
// work, sampling and export are joined. A capability failure in the sampler
// leaves the output file untouched.
func (pm *PowerMonitor) MonitorDuring(ctx context.Context, outputPath string, work func() error) error {
	if pm.exporter == nil {
		return fmt.Errorf("no series exporter configured")
	}

	series := NewPowerSeries()
	sampleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(sampleCtx)
	g.Go(func() error {
		return pm.runUntilStopped(gctx, series, pm.interval)
	})

	var sampleErr error
	joined := false
	join := func() {
		if joined {
			return
		}
		joined = true
		cancel()
		sampleErr = g.Wait()
	}
	// The deferred join covers a panic in work: the background sampler
	// must never outlive this call.
	defer join()

	workStart := pm.clock.Now()
	workErr := work()
	workDuration := pm.clock.Since(workStart)
	join()

	pm.logger.Info("Monitored work finished",
		"duration", workDuration,
		"samples", series.Len(),
		"work.error", workErr != nil,
	)

	var exportErr error
	if sampleErr == nil || series.Len() > 0 {
		exportErr = pm.exporter.Export(outputPath, series)
	}

	return errors.Join(workErr, sampleErr, exportErr)
}
