// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package exporter

import (
	"bufio"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Al3ssandro-create/powermonitor/internal/monitor"
)

// CSVHeader is the fixed header line of every exported series
const CSVHeader = "Time(s),GPU_Power(W),CPU_Power(W)"

// CSVExporter serializes a PowerSeries to a comma-delimited text file
type CSVExporter struct {
	logger *slog.Logger
}

var _ monitor.SeriesExporter = (*CSVExporter)(nil)

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter(logger *slog.Logger) *CSVExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVExporter{
		logger: logger.With("exporter", "csv"),
	}
}

// Export writes the series to path, creating or truncating the file. The
// same series always produces byte-identical output. There is no partial
// write recovery; an I/O failure mid-write leaves a truncated file.
func (e *CSVExporter) Export(path string, series *monitor.PowerSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	_, err = w.WriteString(CSVHeader + "\n")

	for i := 0; err == nil && i < series.Len(); i++ {
		t, gpu, cpu := series.Sample(i)
		_, err = fmt.Fprintf(w, "%s,%s,%s\n", formatFloat(t), formatFloat(gpu), formatFloat(cpu))
	}

	if err == nil {
		err = w.Flush()
	}
	closeErr := f.Close()

	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", path, closeErr)
	}

	e.logger.Debug("Wrote power series", "path", path, "samples", series.Len())
	return nil
}

// formatFloat renders v as the shortest decimal that round-trips, forcing
// a trailing ".0" on integral values so that 50 renders as 50.0
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return s
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
