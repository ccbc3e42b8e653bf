// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

import "fmt"

// Energy is a cumulative energy reading in microjoules.
type Energy uint64

const (
	MicroJoule Energy = 1
	Joule             = 1000 * 1000 * MicroJoule
)

// MicroJoules returns the energy in microjoules
func (e Energy) MicroJoules() float64 {
	return float64(e)
}

// Joules returns the energy in joules
func (e Energy) Joules() float64 {
	return float64(e) / float64(Joule)
}

func (e Energy) String() string {
	return fmt.Sprintf("%.2fJ", e.Joules())
}

// Power is an instantaneous power draw in microwatts.
type Power float64

const (
	MicroWatt Power = 1
	Watt            = 1000 * 1000 * MicroWatt
)

// MicroWatts returns the power in microwatts
func (p Power) MicroWatts() float64 {
	return float64(p)
}

// Watts returns the power in watts
func (p Power) Watts() float64 {
	return float64(p) / float64(Watt)
}

func (p Power) String() string {
	return fmt.Sprintf("%.2fW", p.Watts())
}
