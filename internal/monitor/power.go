// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"time"

	"k8s.io/utils/clock"

	"github.com/Al3ssandro-create/powermonitor/internal/device"
)

// cpuPowerTracker converts successive cumulative energy readings into the
// average power over the elapsed interval. It owns the counter baseline for
// one session; the RAPL counter is a single global value, so at most one
// tracker may poll a meter at a time.
type cpuPowerTracker struct {
	meter device.CPUPowerMeter
	clock clock.PassiveClock

	prevEnergy  device.Energy
	prevTime    time.Time
	initialized bool
}

func newCPUPowerTracker(meter device.CPUPowerMeter, clk clock.PassiveClock) *cpuPowerTracker {
	return &cpuPowerTracker{
		meter: meter,
		clock: clk,
	}
}

// ReadPower reads the counter and returns the average power in watts since
// the previous read. The first read only records the baseline and returns
// exactly 0, since no power figure is derivable from a single sample.
func (t *cpuPowerTracker) ReadPower() (float64, error) {
	energy, err := t.meter.Energy()
	if err != nil {
		return 0, err
	}
	now := t.clock.Now()

	if !t.initialized {
		t.prevEnergy = energy
		t.prevTime = now
		t.initialized = true
		return 0, nil
	}

	deltaEnergy := calculateEnergyDelta(energy, t.prevEnergy, t.meter.MaxEnergy())
	deltaTime := now.Sub(t.prevTime).Seconds()
	t.prevEnergy = energy
	t.prevTime = now

	// Two reads within the clock resolution give no usable delta
	if deltaTime <= 0 {
		return 0, nil
	}
	return deltaEnergy.Joules() / deltaTime, nil
}

// calculateEnergyDelta computes the energy difference handling counter wraparound
func calculateEnergyDelta(current, previous, maxEnergy device.Energy) device.Energy {
	if current >= previous {
		return current - previous
	}

	// counter wraparound
	if maxEnergy > 0 {
		return (maxEnergy - previous) + current
	}

	return 0 // Unable to calculate delta
}
