// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"github.com/NVIDIA/go-dcgm/pkg/dcgm"
)

// dcgmInterface defines the methods we use from the DCGM library.
// This interface allows us to mock the DCGM library for testing
type dcgmInterface interface {
	Init() (cleanup func(), err error)
	GetSupportedDevices() ([]uint, error)
	GetDeviceStatus(gpuID uint) (dcgm.DeviceStatus, error)
}

// defaultDCGMImpl is the default implementation that calls the actual DCGM library
type defaultDCGMImpl struct{}

func (d *defaultDCGMImpl) Init() (func(), error) {
	return dcgm.Init(dcgm.Embedded)
}

func (d *defaultDCGMImpl) GetSupportedDevices() ([]uint, error) {
	return dcgm.GetSupportedDevices()
}

func (d *defaultDCGMImpl) GetDeviceStatus(gpuID uint) (dcgm.DeviceStatus, error) {
	return dcgm.GetDeviceStatus(gpuID)
}

// dcgmLib is the instance used by the code, initialized to the default implementation
var dcgmLib dcgmInterface = &defaultDCGMImpl{}
