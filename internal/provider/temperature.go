// CPU and GPU temperature providers — read thermal-zone pseudo-files
// containing integer millidegrees, with an external-command fallback for
// GPU temperature on boards that expose it only via a vendor tool.
package provider

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/hostpulse/agent/internal/metric"
)

// Default thermal-zone paths on Linux.
const (
	DefaultCPUTempPath = "/sys/class/thermal/thermal_zone0/temp"
	DefaultGPUTempPath = "/sys/class/thermal/thermal_zone1/temp"
)

// DefaultGPUTempCommand is the vendor fallback used when no GPU thermal
// zone file exists (Raspberry Pi firmware tool).
var DefaultGPUTempCommand = []string{"vcgencmd", "measure_temp"}

// CPUTemp reads the CPU temperature from a thermal-zone file.
type CPUTemp struct {
	Path string
}

// NewCPUTemp creates a CPU temperature provider reading the given
// thermal-zone file. An empty path selects the Linux default.
func NewCPUTemp(path string) *CPUTemp {
	if path == "" {
		path = DefaultCPUTempPath
	}
	return &CPUTemp{Path: path}
}

// Name returns the metric name.
func (p *CPUTemp) Name() string { return metric.NameCPUTemp }

// Fetch reads and parses the millidegree reading into Celsius.
func (p *CPUTemp) Fetch(ctx context.Context) (metric.Value, error) {
	raw, err := readTrimmedFile(p.Path)
	if err != nil {
		return metric.Absent(), err
	}
	celsius, err := parseMillidegrees(raw, p.Path)
	if err != nil {
		return metric.Absent(), err
	}
	return metric.NewScalar(celsius), nil
}

// GPUTemp reads the GPU temperature from a thermal-zone file, falling
// back to an external command when the file does not exist.
type GPUTemp struct {
	Path    string
	Command []string

	// run executes the fallback command; overridable in tests.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewGPUTemp creates a GPU temperature provider. Empty path or command
// select the Linux defaults.
func NewGPUTemp(path string, command []string) *GPUTemp {
	if path == "" {
		path = DefaultGPUTempPath
	}
	if len(command) == 0 {
		command = DefaultGPUTempCommand
	}
	return &GPUTemp{
		Path:    path,
		Command: command,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// Name returns the metric name.
func (p *GPUTemp) Name() string { return metric.NameGPUTemp }

// Fetch tries the thermal-zone file first, then the vendor command.
// The command is bounded by the fetch context, so a stuck tool surfaces
// as a Timeout failure.
func (p *GPUTemp) Fetch(ctx context.Context) (metric.Value, error) {
	raw, err := readTrimmedFile(p.Path)
	if err == nil {
		celsius, perr := parseMillidegrees(raw, p.Path)
		if perr != nil {
			return metric.Absent(), perr
		}
		return metric.NewScalar(celsius), nil
	}
	if metric.ClassOf(err) != metric.ClassSourceUnavailable {
		return metric.Absent(), err
	}
	return p.fetchFromCommand(ctx)
}

// fetchFromCommand runs the vendor tool and parses "temp=42.8'C" output.
func (p *GPUTemp) fetchFromCommand(ctx context.Context) (metric.Value, error) {
	out, err := p.run(ctx, p.Command[0], p.Command[1:]...)
	if err != nil {
		if ctx.Err() != nil {
			return metric.Absent(), metric.NewFailure(metric.ClassTimeout,
				"%s timed out", p.Command[0])
		}
		return metric.Absent(), metric.NewFailure(metric.ClassSourceUnavailable,
			"%s: %v", p.Command[0], err)
	}
	celsius, err := parseVendorTemp(string(out))
	if err != nil {
		return metric.Absent(), err
	}
	return metric.NewScalar(celsius), nil
}

// parseVendorTemp extracts the Celsius value from vendor tool output of
// the form "temp=42.8'C".
func parseVendorTemp(out string) (float64, error) {
	s := strings.TrimSpace(out)
	_, after, found := strings.Cut(s, "=")
	if !found {
		return 0, metric.NewFailure(metric.ClassParseError,
			"unexpected vendor temperature output %q", s)
	}
	value, _, _ := strings.Cut(after, "'")
	celsius, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, metric.NewFailure(metric.ClassParseError,
			"unexpected vendor temperature output %q", s)
	}
	return celsius, nil
}
