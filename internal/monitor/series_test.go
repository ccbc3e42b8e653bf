// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowerSeries_Append(t *testing.T) {
	s := NewPowerSeries()
	assert.Equal(t, 0, s.Len())

	s.Append(0.0, 50.0, 0.0)
	s.Append(0.1, 51.5, 12.25)
	s.Append(0.2, 49.0, 11.0)

	assert.Equal(t, 3, s.Len())

	tm, gpu, cpu := s.Sample(0)
	assert.Equal(t, 0.0, tm)
	assert.Equal(t, 50.0, gpu)
	assert.Equal(t, 0.0, cpu)

	tm, gpu, cpu = s.Sample(2)
	assert.Equal(t, 0.2, tm)
	assert.Equal(t, 49.0, gpu)
	assert.Equal(t, 11.0, cpu)
}

func TestPowerSeries_SequencesStayAligned(t *testing.T) {
	s := NewPowerSeries()
	for i := range 100 {
		s.Append(float64(i), float64(i)*2, float64(i)*3)
	}

	assert.Len(t, s.Times(), s.Len())
	assert.Len(t, s.GPUPower(), s.Len())
	assert.Len(t, s.CPUPower(), s.Len())

	assert.Equal(t, 42.0, s.Times()[42])
	assert.Equal(t, 84.0, s.GPUPower()[42])
	assert.Equal(t, 126.0, s.CPUPower()[42])
}
