// SPDX-FileCopyrightText: 2025 The PowerMonitor Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"k8s.io/utils/ptr"
)

// Config represents the complete application configuration
type (
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}

	Host struct {
		SysFS string `yaml:"sysfs"`
	}

	// Sampling configuration for bounded-duration runs
	Sampling struct {
		Duration time.Duration `yaml:"duration"` // Total sampling duration
		Interval time.Duration `yaml:"interval"` // Poll interval between samples
	}

	Output struct {
		Path string `yaml:"path"` // CSV output path; overwritten on every run
	}

	// GPU contains settings for GPU power sampling
	GPU struct {
		Device uint `yaml:"device"` // GPU device index to sample
	}

	// Development mode settings; disabled by default
	Dev struct {
		FakeCpuMeter struct {
			Enabled    *bool   `yaml:"enabled"`
			EnergyStep float64 `yaml:"energyStep"` // Energy increment per read in joules
		} `yaml:"fake-cpu-meter"`
		FakeGpuMeter struct {
			Enabled    *bool   `yaml:"enabled"`
			PowerBase  float64 `yaml:"powerBase"`  // Base power consumption in watts
			PowerRange float64 `yaml:"powerRange"` // Power variation range in watts
		} `yaml:"fake-gpu-meter"`
	}

	Config struct {
		Log      Log      `yaml:"log"`
		Host     Host     `yaml:"host"`
		Sampling Sampling `yaml:"sampling"`
		Output   Output   `yaml:"output"`
		GPU      GPU      `yaml:"gpu"`
		Dev      Dev      `yaml:"dev"` // WARN: do not expose dev settings as flags
	}
)

const (
	// Flags
	LogLevelFlag  = "log.level"
	LogFormatFlag = "log.format"

	HostSysFSFlag = "host.sysfs"

	SamplingDurationFlag = "sampling.duration"
	SamplingIntervalFlag = "sampling.interval"

	OutputPathFlag = "output.path"

	GPUDeviceFlag = "gpu.device"
)

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	cfg := &Config{
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Host: Host{
			SysFS: "/sys",
		},
		Sampling: Sampling{
			Duration: 10 * time.Second,
			Interval: 100 * time.Millisecond,
		},
		Output: Output{
			Path: "power_usage.csv",
		},
		GPU: GPU{
			Device: 0,
		},
	}

	cfg.Dev.FakeCpuMeter.Enabled = ptr.To(false)
	cfg.Dev.FakeCpuMeter.EnergyStep = 1.0
	cfg.Dev.FakeGpuMeter.Enabled = ptr.To(false)
	cfg.Dev.FakeGpuMeter.PowerBase = 100.0
	cfg.Dev.FakeGpuMeter.PowerRange = 50.0
	return cfg
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.sanitize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromFile loads configuration from a file
func FromFile(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return Load(file)
}

type ConfigUpdaterFn func(*Config) error

// RegisterFlags registers command-line flags with kingpin app
// and returns ConfigUpdaterFn that updates the config from parsed flags
// as command line arguments override config file settings
func RegisterFlags(app *kingpin.Application) ConfigUpdaterFn {
	// track flags that were explicitly set
	flagsSet := map[string]bool{}

	app.PreAction(func(ctx *kingpin.ParseContext) error {
		// Clear the map in case this function is called multiple times
		flagsSet = map[string]bool{}

		for _, element := range ctx.Elements {
			if flag, ok := element.Clause.(*kingpin.FlagClause); ok && element.Value != nil {
				flagsSet[flag.Model().Name] = true
			}
		}
		return nil
	})

	// Logging
	logLevel := app.Flag(LogLevelFlag, "Logging level: debug, info, warn, error").Default("info").Enum("debug", "info", "warn", "error")
	logFormat := app.Flag(LogFormatFlag, "Logging format: text or json").Default("text").Enum("text", "json")

	// host
	hostSysFS := app.Flag(HostSysFSFlag, "Host sysfs path").Default("/sys").String()

	// sampling
	samplingDuration := app.Flag(SamplingDurationFlag, "Total sampling duration for bounded runs").Default("10s").Duration()
	samplingInterval := app.Flag(SamplingIntervalFlag, "Poll interval between samples").Default("100ms").Duration()

	// output
	outputPath := app.Flag(OutputPathFlag, "CSV output path; overwritten on every run").Default("power_usage.csv").String()

	// gpu
	gpuDevice := app.Flag(GPUDeviceFlag, "GPU device index to sample").Default("0").Uint()

	return func(cfg *Config) error {
		if flagsSet[LogLevelFlag] {
			cfg.Log.Level = *logLevel
		}

		if flagsSet[LogFormatFlag] {
			cfg.Log.Format = *logFormat
		}

		if flagsSet[HostSysFSFlag] {
			cfg.Host.SysFS = *hostSysFS
		}

		if flagsSet[SamplingDurationFlag] {
			cfg.Sampling.Duration = *samplingDuration
		}

		if flagsSet[SamplingIntervalFlag] {
			cfg.Sampling.Interval = *samplingInterval
		}

		if flagsSet[OutputPathFlag] {
			cfg.Output.Path = *outputPath
		}

		if flagsSet[GPUDeviceFlag] {
			cfg.GPU.Device = *gpuDevice
		}

		cfg.sanitize()
		return cfg.Validate()
	}
}

// sanitize normalizes string fields
func (c *Config) sanitize() {
	c.Log.Level = strings.TrimSpace(c.Log.Level)
	c.Log.Format = strings.TrimSpace(c.Log.Format)
	c.Host.SysFS = strings.TrimSpace(c.Host.SysFS)
	c.Output.Path = strings.TrimSpace(c.Output.Path)
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	errs := []string{}

	logLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !logLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %q", c.Log.Level))
	}

	logFormats := map[string]bool{"text": true, "json": true}
	if !logFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %q", c.Log.Format))
	}

	if c.Host.SysFS == "" {
		errs = append(errs, "host sysfs path cannot be empty")
	}

	if c.Sampling.Duration < 0 {
		errs = append(errs, fmt.Sprintf("sampling duration must be >= 0, got %s", c.Sampling.Duration))
	}

	if c.Sampling.Interval <= 0 {
		errs = append(errs, fmt.Sprintf("sampling interval must be > 0, got %s", c.Sampling.Interval))
	}

	if c.Output.Path == "" {
		errs = append(errs, "output path cannot be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, ", "))
	}

	return nil
}

// String returns the configuration rendered as YAML
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<error marshaling config: %v>", err)
	}
	return string(out)
}
