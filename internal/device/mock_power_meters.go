// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"github.com/stretchr/testify/mock"
)

// MockCPUPowerMeter is a mock implementation of CPUPowerMeter
type MockCPUPowerMeter struct {
	mock.Mock
}

var _ CPUPowerMeter = (*MockCPUPowerMeter)(nil)

func (m *MockCPUPowerMeter) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockCPUPowerMeter) Init() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockCPUPowerMeter) Energy() (Energy, error) {
	args := m.Called()
	return args.Get(0).(Energy), args.Error(1)
}

func (m *MockCPUPowerMeter) MaxEnergy() Energy {
	args := m.Called()
	return args.Get(0).(Energy)
}

func (m *MockCPUPowerMeter) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockGPUPowerMeter is a mock implementation of GPUPowerMeter
type MockGPUPowerMeter struct {
	mock.Mock
}

var _ GPUPowerMeter = (*MockGPUPowerMeter)(nil)

func (m *MockGPUPowerMeter) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockGPUPowerMeter) Init() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockGPUPowerMeter) Power(device uint) (Power, error) {
	args := m.Called(device)
	return args.Get(0).(Power), args.Error(1)
}

func (m *MockGPUPowerMeter) Shutdown() error {
	args := m.Called()
	return args.Error(0)
}
