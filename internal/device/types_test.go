// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnergyConversions(t *testing.T) {
	e := 2500 * MicroJoule
	assert.Equal(t, 2500.0, e.MicroJoules())
	assert.Equal(t, 0.0025, e.Joules())

	assert.Equal(t, 1.0, (1 * Joule).Joules())
	assert.Equal(t, "1.50J", (1500000 * MicroJoule).String())
}

func TestPowerConversions(t *testing.T) {
	p := 55500000 * MicroWatt
	assert.Equal(t, 55.5, p.Watts())
	assert.Equal(t, 55500000.0, p.MicroWatts())
	assert.Equal(t, "55.50W", p.String())
}

func TestCapabilityErrorFormatting(t *testing.T) {
	err := &CapabilityError{
		Kind: NoAccelerator,
		Hint: "install the CUDA toolkit and NVIDIA DCGM",
	}
	assert.Contains(t, err.Error(), "no-accelerator")
	assert.Contains(t, err.Error(), "CUDA")
}
