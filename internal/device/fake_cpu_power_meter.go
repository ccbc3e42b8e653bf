// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"log/slog"
	"math/rand"
	"sync"
)

// fakeCPUPowerMeter implements CPUPowerMeter for development and testing.
// Each Energy call advances a simulated cumulative counter, wrapping at
// maxEnergy like the real RAPL counter.
type fakeCPUPowerMeter struct {
	logger       *slog.Logger
	energyStep   Energy
	randomFactor float64
	maxEnergy    Energy

	mu     sync.Mutex
	energy Energy
}

var _ CPUPowerMeter = (*fakeCPUPowerMeter)(nil)

// FakeCPUOptFn is a functional option for configuring the fake CPU meter
type FakeCPUOptFn func(*fakeCPUPowerMeter)

// WithFakeCPULogger sets the logger
func WithFakeCPULogger(logger *slog.Logger) FakeCPUOptFn {
	return func(m *fakeCPUPowerMeter) {
		m.logger = logger
	}
}

// WithFakeCPUEnergyStep sets the energy increment per read in joules
func WithFakeCPUEnergyStep(joules float64) FakeCPUOptFn {
	return func(m *fakeCPUPowerMeter) {
		m.energyStep = Energy(joules * float64(Joule))
	}
}

// WithFakeCPUMaxEnergy sets the counter wraparound value
func WithFakeCPUMaxEnergy(max Energy) FakeCPUOptFn {
	return func(m *fakeCPUPowerMeter) {
		m.maxEnergy = max
	}
}

// NewFakeCPUMeter creates a new fake CPU power meter
func NewFakeCPUMeter(opts ...FakeCPUOptFn) CPUPowerMeter {
	meter := &fakeCPUPowerMeter{
		logger:       slog.Default(),
		energyStep:   1 * Joule,
		randomFactor: 0.2, // 20% randomness
		maxEnergy:    Energy(^uint64(0)),
	}

	for _, opt := range opts {
		opt(meter)
	}

	meter.logger = meter.logger.With("meter", "fake-cpu")
	return meter
}

// Name returns the meter name
func (m *fakeCPUPowerMeter) Name() string {
	return "fake-cpu"
}

// Init verifies the fake counter; it never fails
func (m *fakeCPUPowerMeter) Init() error {
	return nil
}

// Energy returns the simulated cumulative counter, advancing it by the
// configured step plus some randomness
func (m *fakeCPUPowerMeter) Energy() (Energy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	randomComponent := Energy(rand.Float64() * float64(m.energyStep) * m.randomFactor)
	m.energy = (m.energy + m.energyStep + randomComponent) % m.maxEnergy

	return m.energy, nil
}

// MaxEnergy returns the counter wraparound value
func (m *fakeCPUPowerMeter) MaxEnergy() Energy {
	return m.maxEnergy
}

// Close releases any resources held by the meter
func (m *fakeCPUPowerMeter) Close() error {
	return nil
}
