// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"fmt"
	"strings"

	"github.com/prometheus/procfs/sysfs"
)

// CPUPowerMeter reads the cumulative energy counter of the CPU package.
// The counter is a single global value; only one reader may derive power
// deltas from a meter at a time.
type CPUPowerMeter interface {
	// Name returns the meter name
	Name() string

	// Init verifies the counter is present and readable
	Init() error

	// Energy returns the current cumulative energy of the package zone,
	// read fresh from the counter on every call
	Energy() (Energy, error)

	// MaxEnergy returns the counter value at which the reading wraps
	// around to zero
	MaxEnergy() Energy

	// Close releases any resources held by the meter
	Close() error
}

// raplPowerMeter implements CPUPowerMeter using the Linux powercap sysfs
// interface (intel-rapl energy_uj counters)
type raplPowerMeter struct {
	fs   sysfs.FS
	zone *sysfs.RaplZone
}

var _ CPUPowerMeter = (*raplPowerMeter)(nil)

// NewRaplPowerMeter creates a CPU power meter backed by the RAPL package
// zone under the given sysfs mount point
func NewRaplPowerMeter(sysfsPath string) (CPUPowerMeter, error) {
	fs, err := sysfs.NewFS(sysfsPath)
	if err != nil {
		return nil, &CounterError{Err: fmt.Errorf("failed to open sysfs at %s: %w", sysfsPath, err)}
	}

	return &raplPowerMeter{fs: fs}, nil
}

// Name returns the meter name
func (r *raplPowerMeter) Name() string {
	return "rapl"
}

// Init locates the package energy zone and verifies it can be read
func (r *raplPowerMeter) Init() error {
	zones, err := sysfs.GetRaplZones(r.fs)
	if err != nil {
		return &CounterError{Err: fmt.Errorf("failed to read RAPL zones: %w", err)}
	}
	if len(zones) == 0 {
		return &CounterError{Err: fmt.Errorf("no RAPL zones found")}
	}

	// Prefer the package zone; fall back to the first zone exposed
	zone := &zones[0]
	for i := range zones {
		if strings.HasPrefix(zones[i].Name, "package") {
			zone = &zones[i]
			break
		}
	}

	if _, err := zone.GetEnergyMicrojoules(); err != nil {
		return &CounterError{Err: fmt.Errorf("failed to read energy from zone %s: %w", zone.Name, err)}
	}

	r.zone = zone
	return nil
}

// Energy returns the current cumulative energy of the selected zone
func (r *raplPowerMeter) Energy() (Energy, error) {
	if r.zone == nil {
		if err := r.Init(); err != nil {
			return 0, err
		}
	}

	uj, err := r.zone.GetEnergyMicrojoules()
	if err != nil {
		return 0, &CounterError{Err: err}
	}
	return Energy(uj) * MicroJoule, nil
}

// MaxEnergy returns the wraparound value of the selected zone
func (r *raplPowerMeter) MaxEnergy() Energy {
	if r.zone == nil {
		return 0
	}
	return Energy(r.zone.MaxMicrojoules)
}

// Close releases any resources held by the meter
func (r *raplPowerMeter) Close() error {
	// Nothing to release for sysfs reads
	return nil
}
