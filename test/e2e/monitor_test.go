// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package e2e

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	powermonitor "github.com/Al3ssandro-create/powermonitor"
	"github.com/Al3ssandro-create/powermonitor/internal/device"
)

// readSeriesCSV parses an exported power series back into columns
func readSeriesCSV(t *testing.T, path string) (times, gpu, cpu []float64) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	require.Equal(t, []string{"Time(s)", "GPU_Power(W)", "CPU_Power(W)"}, records[0])

	for _, rec := range records[1:] {
		require.Len(t, rec, 3)
		tm, err := strconv.ParseFloat(rec[0], 64)
		require.NoError(t, err)
		g, err := strconv.ParseFloat(rec[1], 64)
		require.NoError(t, err)
		c, err := strconv.ParseFloat(rec[2], 64)
		require.NoError(t, err)

		times = append(times, tm)
		gpu = append(gpu, g)
		cpu = append(cpu, c)
	}
	return times, gpu, cpu
}

// TestMonitoredWorkloadProducesSeries drives the whole pipeline with fake
// meters: sample during a workload, export to CSV, parse it back and check
// the series shape.
func TestMonitoredWorkloadProducesSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "power_usage.csv")

	opts := []powermonitor.Option{
		powermonitor.WithCPUMeter(device.NewFakeCPUMeter(device.WithFakeCPUEnergyStep(0.5))),
		powermonitor.WithGPUMeter(device.NewFakeGPUMeter([]uint{0},
			device.WithFakeGPUPowerBase(150.0),
			device.WithFakeGPUPowerRange(20.0),
		)),
		powermonitor.WithInterval(10 * time.Millisecond),
	}

	err := powermonitor.MonitorDuring(context.Background(), path, func() error {
		// Keep the CPU mildly busy so the run spans several intervals
		deadline := time.Now().Add(80 * time.Millisecond)
		x := 0.0
		for time.Now().Before(deadline) {
			x += 1.0
		}
		_ = x
		return nil
	}, opts...)
	require.NoError(t, err)

	times, gpu, cpu := readSeriesCSV(t, path)
	require.NotEmpty(t, times)

	// Elapsed seconds start near zero and never decrease
	assert.Less(t, times[0], 0.05)
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i], times[i-1])
	}

	// Fake GPU power stays within base ± range/2
	for _, w := range gpu {
		assert.GreaterOrEqual(t, w, 140.0)
		assert.LessOrEqual(t, w, 160.0)
	}

	// The first CPU sample establishes the baseline
	assert.Equal(t, 0.0, cpu[0])
	for _, w := range cpu {
		assert.GreaterOrEqual(t, w, 0.0)
	}
}

// TestBoundedSamplingRun drives a fixed-duration sampling session end to end.
func TestBoundedSamplingRun(t *testing.T) {
	opts := []powermonitor.Option{
		powermonitor.WithCPUMeter(device.NewFakeCPUMeter()),
		powermonitor.WithGPUMeter(device.NewFakeGPUMeter([]uint{0})),
	}

	duration := 60 * time.Millisecond
	interval := 10 * time.Millisecond

	series, err := powermonitor.MonitorPower(context.Background(), duration, interval, opts...)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, series.Len(), 1)
	assert.LessOrEqual(t, series.Len(), int(duration/interval)+2)

	path := filepath.Join(t.TempDir(), "bounded.csv")
	require.NoError(t, powermonitor.SaveToCSV(path, series))

	times, _, _ := readSeriesCSV(t, path)
	assert.Len(t, times, series.Len())
}
