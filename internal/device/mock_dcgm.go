// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"github.com/NVIDIA/go-dcgm/pkg/dcgm"
	"github.com/stretchr/testify/mock"
)

// mockDCGMImpl is a mock implementation of dcgmInterface
type mockDCGMImpl struct {
	mock.Mock
}

func (m *mockDCGMImpl) Init() (func(), error) {
	calledArgs := m.Called()
	return calledArgs.Get(0).(func()), calledArgs.Error(1)
}

func (m *mockDCGMImpl) GetSupportedDevices() ([]uint, error) {
	calledArgs := m.Called()
	return calledArgs.Get(0).([]uint), calledArgs.Error(1)
}

func (m *mockDCGMImpl) GetDeviceStatus(gpuID uint) (dcgm.DeviceStatus, error) {
	calledArgs := m.Called(gpuID)
	return calledArgs.Get(0).(dcgm.DeviceStatus), calledArgs.Error(1)
}
