// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

import "fmt"

// CapabilityErrorKind identifies which GPU capability is missing
type CapabilityErrorKind string

const (
	// NoAccelerator indicates no supported accelerator was found
	NoAccelerator CapabilityErrorKind = "no-accelerator"

	// NoPowerManagement indicates the accelerator does not expose power management
	NoPowerManagement CapabilityErrorKind = "no-power-management"
)

// CapabilityError reports a missing GPU capability together with a
// remediation hint. Capability errors are fatal to a sampling session and
// are never retried.
type CapabilityError struct {
	Kind CapabilityErrorKind
	Hint string
	Err  error
}

func (e *CapabilityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (%s)", e.Kind, e.Err, e.Hint)
	}
	return fmt.Sprintf("%s (%s)", e.Kind, e.Hint)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// CounterError reports that the cumulative energy counter could not be
// opened, read, or parsed.
type CounterError struct {
	Err error
}

func (e *CounterError) Error() string {
	return fmt.Sprintf("energy counter unavailable: %v (ensure the intel-rapl powercap interface is enabled)", e.Err)
}

func (e *CounterError) Unwrap() error {
	return e.Err
}
