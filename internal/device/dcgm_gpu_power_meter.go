// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// DCGMGPUPowerMeter implements GPUPowerMeter using NVIDIA DCGM in embedded mode
type DCGMGPUPowerMeter struct {
	logger *slog.Logger
	device uint

	mu      sync.Mutex
	cleanup func()
}

var _ GPUPowerMeter = (*DCGMGPUPowerMeter)(nil)

// DCGMGPUPowerMeterOpts contains options for the DCGM GPU power meter
type DCGMGPUPowerMeterOpts struct {
	Logger *slog.Logger

	// Device is the GPU device index to monitor (default: 0)
	Device uint
}

// NewDCGMGPUPowerMeter creates a new DCGM-based GPU power meter
func NewDCGMGPUPowerMeter(opts DCGMGPUPowerMeterOpts) *DCGMGPUPowerMeter {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &DCGMGPUPowerMeter{
		logger: opts.Logger.With("meter", "dcgm-gpu"),
		device: opts.Device,
	}
}

// Name returns the meter name
func (m *DCGMGPUPowerMeter) Name() string {
	return "dcgm-gpu"
}

// Init initializes DCGM and probes the monitored device. It checks, in
// order, that an accelerator is present and that it reports power data;
// calling Init on an already initialized meter is a no-op.
func (m *DCGMGPUPowerMeter) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cleanup != nil {
		return nil
	}

	cleanup, err := dcgmLib.Init()
	if err != nil {
		return &CapabilityError{
			Kind: NoAccelerator,
			Hint: "install the CUDA toolkit and NVIDIA DCGM",
			Err:  fmt.Errorf("failed to initialize DCGM: %w", err),
		}
	}

	devices, err := dcgmLib.GetSupportedDevices()
	if err != nil {
		cleanup()
		return &CapabilityError{
			Kind: NoAccelerator,
			Hint: "install the CUDA toolkit and NVIDIA DCGM",
			Err:  fmt.Errorf("failed to enumerate GPUs: %w", err),
		}
	}
	if !slices.Contains(devices, m.device) {
		cleanup()
		return &CapabilityError{
			Kind: NoAccelerator,
			Hint: "install the CUDA toolkit and NVIDIA DCGM",
			Err:  fmt.Errorf("GPU %d not found (supported devices: %v)", m.device, devices),
		}
	}

	if _, err := dcgmLib.GetDeviceStatus(m.device); err != nil {
		cleanup()
		return &CapabilityError{
			Kind: NoPowerManagement,
			Hint: "install or update the NVIDIA driver",
			Err:  fmt.Errorf("GPU %d does not report power data: %w", m.device, err),
		}
	}

	m.cleanup = cleanup
	m.logger.Info("Acquired GPU power management capability", "device", m.device)
	return nil
}

// Power returns the instantaneous power draw of the given device
func (m *DCGMGPUPowerMeter) Power(device uint) (Power, error) {
	st, err := dcgmLib.GetDeviceStatus(device)
	if err != nil {
		return 0, fmt.Errorf("failed to read power for GPU %d: %w", device, err)
	}

	// DCGM reports watts
	return Power(st.Power) * Watt, nil
}

// Shutdown releases DCGM. It is a no-op when Init never succeeded and is
// safe to call more than once.
func (m *DCGMGPUPowerMeter) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cleanup != nil {
		m.cleanup()
		m.cleanup = nil
		m.logger.Debug("Released DCGM")
	}
	return nil
}
