// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"fmt"
	"time"
)

// RunFixedDuration samples GPU and CPU power every interval until duration
// has elapsed, returning the accumulated series. The GPU capability is
// acquired up front, so a missing accelerator fails before any sample is
// taken, and released on every exit path. A read failure mid-session aborts
// the loop and returns the partial series together with the error.
func (pm *PowerMonitor) RunFixedDuration(ctx context.Context, duration, interval time.Duration) (*PowerSeries, error) {
	if duration < 0 {
		return nil, fmt.Errorf("duration must be >= 0, got %s", duration)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be > 0, got %s", interval)
	}

	if err := pm.gpu.Init(); err != nil {
		return nil, err
	}
	defer func() {
		_ = pm.gpu.Shutdown()
	}()

	if err := pm.cpu.Init(); err != nil {
		return nil, err
	}
	defer func() {
		_ = pm.cpu.Close()
	}()

	series := NewPowerSeries()
	tracker := newCPUPowerTracker(pm.cpu, pm.clock)

	start := pm.clock.Now()
	deadline := start.Add(duration)

	for pm.clock.Now().Before(deadline) {
		if err := pm.sampleTick(series, tracker, start); err != nil {
			return series, err
		}

		select {
		case <-ctx.Done():
			return series, ctx.Err()
		case <-pm.clock.After(interval):
		}
	}

	pm.logger.Debug("Fixed duration sampling finished",
		"duration", duration,
		"interval", interval,
		"samples", series.Len(),
	)
	return series, nil
}

// runUntilStopped samples every interval into series until ctx is
// cancelled. The GPU capability is re-acquired here so the background task
// owns its whole acquire/release scope; release runs on every exit path,
// normal or not. Cancellation is noticed within one interval.
func (pm *PowerMonitor) runUntilStopped(ctx context.Context, series *PowerSeries, interval time.Duration) error {
	if err := pm.gpu.Init(); err != nil {
		return err
	}
	defer func() {
		_ = pm.gpu.Shutdown()
	}()

	if err := pm.cpu.Init(); err != nil {
		return err
	}
	defer func() {
		_ = pm.cpu.Close()
	}()

	tracker := newCPUPowerTracker(pm.cpu, pm.clock)
	start := pm.clock.Now()

	ticker := pm.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := pm.sampleTick(series, tracker, start); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}
	}
}

// sampleTick captures one sample: elapsed time, instantaneous GPU power and
// derived CPU power, appended to the series atomically.
func (pm *PowerMonitor) sampleTick(series *PowerSeries, tracker *cpuPowerTracker, start time.Time) error {
	elapsed := pm.clock.Now().Sub(start).Seconds()

	gpuPower, err := pm.gpu.Power(pm.device)
	if err != nil {
		return fmt.Errorf("failed to read GPU power: %w", err)
	}

	cpuWatts, err := tracker.ReadPower()
	if err != nil {
		return fmt.Errorf("failed to read CPU power: %w", err)
	}

	series.Append(elapsed, gpuPower.Watts(), cpuWatts)
	return nil
}
