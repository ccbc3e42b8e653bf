// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

// PowerSeries accumulates the samples of one monitoring session as three
// parallel sequences: elapsed seconds since sampling start, GPU power in
// watts and CPU power in watts. Append is the only mutation, so the three
// sequences always have equal length. A series is owned by the sampling
// loop while it runs and must be treated as read-only once sampling stops;
// it is never reused across sessions.
type PowerSeries struct {
	times    []float64
	gpuPower []float64
	cpuPower []float64
}

// NewPowerSeries creates an empty series
func NewPowerSeries() *PowerSeries {
	return &PowerSeries{}
}

// Append records one sampling tick. All three sequences grow together;
// there is no partial append.
func (s *PowerSeries) Append(t, gpuWatts, cpuWatts float64) {
	s.times = append(s.times, t)
	s.gpuPower = append(s.gpuPower, gpuWatts)
	s.cpuPower = append(s.cpuPower, cpuWatts)
}

// Len returns the number of samples
func (s *PowerSeries) Len() int {
	return len(s.times)
}

// Sample returns the i-th sample
func (s *PowerSeries) Sample(i int) (t, gpuWatts, cpuWatts float64) {
	return s.times[i], s.gpuPower[i], s.cpuPower[i]
}

// Times returns the elapsed-seconds sequence. The returned slice is the
// series' backing storage; callers must not modify it.
func (s *PowerSeries) Times() []float64 {
	return s.times
}

// GPUPower returns the GPU watts sequence; callers must not modify it.
func (s *PowerSeries) GPUPower() []float64 {
	return s.gpuPower
}

// CPUPower returns the CPU watts sequence; callers must not modify it.
func (s *PowerSeries) CPUPower() []float64 {
	return s.cpuPower
}
