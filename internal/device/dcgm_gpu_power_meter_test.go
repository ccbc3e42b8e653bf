// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"errors"
	"testing"

	"github.com/NVIDIA/go-dcgm/pkg/dcgm"
	"github.com/stretchr/testify/assert"
)

func TestDCGMGPUPowerMeter_InitAndPower(t *testing.T) {
	// Save original DCGM lib and restore after test
	originalLib := dcgmLib
	defer func() { dcgmLib = originalLib }()

	mockDCGM := new(mockDCGMImpl)
	dcgmLib = mockDCGM

	cleanupCalls := 0
	mockDCGM.On("Init").Return(func() { cleanupCalls++ }, nil)
	mockDCGM.On("GetSupportedDevices").Return([]uint{0, 1}, nil)
	mockDCGM.On("GetDeviceStatus", uint(0)).Return(dcgm.DeviceStatus{Power: 55.5}, nil)

	meter := NewDCGMGPUPowerMeter(DCGMGPUPowerMeterOpts{})
	assert.Equal(t, "dcgm-gpu", meter.Name())

	assert.NoError(t, meter.Init())

	// Init on an already initialized meter is a no-op
	assert.NoError(t, meter.Init())
	mockDCGM.AssertNumberOfCalls(t, "Init", 1)

	power, err := meter.Power(0)
	assert.NoError(t, err)
	assert.InDelta(t, 55.5, power.Watts(), 1e-9)

	// Shutdown releases DCGM exactly once
	assert.NoError(t, meter.Shutdown())
	assert.NoError(t, meter.Shutdown())
	assert.Equal(t, 1, cleanupCalls)

	mockDCGM.AssertExpectations(t)
}

func TestDCGMGPUPowerMeter_NoAccelerator(t *testing.T) {
	originalLib := dcgmLib
	defer func() { dcgmLib = originalLib }()

	mockDCGM := new(mockDCGMImpl)
	dcgmLib = mockDCGM

	mockDCGM.On("Init").Return(func() {}, errors.New("libdcgm.so not found"))

	meter := NewDCGMGPUPowerMeter(DCGMGPUPowerMeterOpts{})
	err := meter.Init()
	assert.Error(t, err)

	capErr := &CapabilityError{}
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, NoAccelerator, capErr.Kind)
	assert.Contains(t, capErr.Hint, "DCGM")
}

func TestDCGMGPUPowerMeter_DeviceNotFound(t *testing.T) {
	originalLib := dcgmLib
	defer func() { dcgmLib = originalLib }()

	mockDCGM := new(mockDCGMImpl)
	dcgmLib = mockDCGM

	cleanupCalls := 0
	mockDCGM.On("Init").Return(func() { cleanupCalls++ }, nil)
	mockDCGM.On("GetSupportedDevices").Return([]uint{1, 2}, nil)

	meter := NewDCGMGPUPowerMeter(DCGMGPUPowerMeterOpts{Device: 0})
	err := meter.Init()
	assert.Error(t, err)

	capErr := &CapabilityError{}
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, NoAccelerator, capErr.Kind)

	// A failed probe must not leave DCGM initialized
	assert.Equal(t, 1, cleanupCalls)
}

func TestDCGMGPUPowerMeter_NoPowerManagement(t *testing.T) {
	originalLib := dcgmLib
	defer func() { dcgmLib = originalLib }()

	mockDCGM := new(mockDCGMImpl)
	dcgmLib = mockDCGM

	cleanupCalls := 0
	mockDCGM.On("Init").Return(func() { cleanupCalls++ }, nil)
	mockDCGM.On("GetSupportedDevices").Return([]uint{0}, nil)
	mockDCGM.On("GetDeviceStatus", uint(0)).Return(dcgm.DeviceStatus{}, errors.New("power unsupported"))

	meter := NewDCGMGPUPowerMeter(DCGMGPUPowerMeterOpts{Device: 0})
	err := meter.Init()
	assert.Error(t, err)

	capErr := &CapabilityError{}
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, NoPowerManagement, capErr.Kind)
	assert.Contains(t, capErr.Hint, "driver")
	assert.Equal(t, 1, cleanupCalls)
}

func TestDCGMGPUPowerMeter_PowerReadError(t *testing.T) {
	originalLib := dcgmLib
	defer func() { dcgmLib = originalLib }()

	mockDCGM := new(mockDCGMImpl)
	dcgmLib = mockDCGM

	mockDCGM.On("GetDeviceStatus", uint(3)).Return(dcgm.DeviceStatus{}, errors.New("transient failure"))

	meter := NewDCGMGPUPowerMeter(DCGMGPUPowerMeterOpts{Device: 3})
	_, err := meter.Power(3)
	assert.ErrorContains(t, err, "failed to read power for GPU 3")
}
