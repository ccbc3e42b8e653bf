// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

// GPUPowerMeter reads instantaneous power draw of a GPU device
type GPUPowerMeter interface {
	// Name returns the meter name
	Name() string

	// Init acquires the GPU management capability, verifying both that an
	// accelerator is present and that it exposes power management.
	// Failures are reported as *CapabilityError.
	Init() error

	// Power returns the instantaneous power draw of the given device
	Power(device uint) (Power, error)

	// Shutdown releases the capability. It always succeeds and is a no-op
	// when Init never completed, so it is safe on every exit path.
	Shutdown() error
}
