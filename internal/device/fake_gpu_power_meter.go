// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"sync"
)

// fakeGPUPowerMeter implements GPUPowerMeter for development and testing
// without real GPUs
type fakeGPUPowerMeter struct {
	logger     *slog.Logger
	devices    []uint
	powerBase  float64 // Base power consumption in watts
	powerRange float64 // Power variation range in watts

	mu       sync.Mutex
	acquired bool
}

var _ GPUPowerMeter = (*fakeGPUPowerMeter)(nil)

// FakeGPUOptFn is a functional option for configuring the fake GPU meter
type FakeGPUOptFn func(*fakeGPUPowerMeter)

// WithFakeGPULogger sets the logger
func WithFakeGPULogger(logger *slog.Logger) FakeGPUOptFn {
	return func(m *fakeGPUPowerMeter) {
		m.logger = logger
	}
}

// WithFakeGPUPowerBase sets the base power consumption
func WithFakeGPUPowerBase(watts float64) FakeGPUOptFn {
	return func(m *fakeGPUPowerMeter) {
		m.powerBase = watts
	}
}

// WithFakeGPUPowerRange sets the power variation range
func WithFakeGPUPowerRange(watts float64) FakeGPUOptFn {
	return func(m *fakeGPUPowerMeter) {
		m.powerRange = watts
	}
}

// NewFakeGPUMeter creates a new fake GPU power meter
func NewFakeGPUMeter(devices []uint, opts ...FakeGPUOptFn) GPUPowerMeter {
	if len(devices) == 0 {
		devices = []uint{0} // Default to GPU 0
	}

	meter := &fakeGPUPowerMeter{
		logger:     slog.Default(),
		devices:    devices,
		powerBase:  100.0, // 100W base
		powerRange: 50.0,  // ±50W variation
	}

	for _, opt := range opts {
		opt(meter)
	}

	meter.logger = meter.logger.With("meter", "fake-gpu")
	meter.logger.Info("Created fake GPU meter", "devices", devices)

	return meter
}

// Name returns the meter name
func (m *fakeGPUPowerMeter) Name() string {
	return "fake-gpu"
}

// Init marks the capability as acquired; the fake never fails
func (m *fakeGPUPowerMeter) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.acquired = true
	return nil
}

// Power returns a simulated instantaneous power reading
func (m *fakeGPUPowerMeter) Power(device uint) (Power, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.acquired {
		return 0, fmt.Errorf("fake GPU meter not initialized")
	}
	if !slices.Contains(m.devices, device) {
		return 0, fmt.Errorf("GPU %d not monitored", device)
	}

	variation := (rand.Float64() - 0.5) * m.powerRange
	return Power(m.powerBase+variation) * Watt, nil
}

// Shutdown releases the fake capability
func (m *fakeGPUPowerMeter) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.acquired = false
	return nil
}
