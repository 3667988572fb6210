// CPU frequency provider — reads the current clock from the cpufreq
// pseudo-file (kHz), falling back to gopsutil's static CPU info when the
// file is not exposed (common in VMs).
package provider

import (
	"context"
	"strconv"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/hostpulse/agent/internal/metric"
)

// DefaultCPUFreqPath is the cpufreq scaling file for the first core.
const DefaultCPUFreqPath = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq"

// CPUFreq reports the current CPU frequency in MHz.
type CPUFreq struct {
	Path string

	// info is the gopsutil fallback; overridable in tests.
	info func(ctx context.Context) ([]cpu.InfoStat, error)
}

// NewCPUFreq creates a CPU frequency provider reading the given cpufreq
// file. An empty path selects the Linux default.
func NewCPUFreq(path string) *CPUFreq {
	if path == "" {
		path = DefaultCPUFreqPath
	}
	return &CPUFreq{Path: path, info: cpu.InfoWithContext}
}

// Name returns the metric name.
func (p *CPUFreq) Name() string { return metric.NameCPUFreq }

// Fetch parses the kHz reading into MHz. When the cpufreq file does not
// exist it falls back to the nominal frequency from CPU info.
func (p *CPUFreq) Fetch(ctx context.Context) (metric.Value, error) {
	raw, err := readTrimmedFile(p.Path)
	if err != nil {
		if metric.ClassOf(err) == metric.ClassSourceUnavailable {
			return p.fetchFromInfo(ctx)
		}
		return metric.Absent(), err
	}
	khz, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return metric.Absent(), metric.NewFailure(metric.ClassParseError,
			"malformed frequency %q in %s", raw, p.Path)
	}
	return metric.NewScalar(round2(khz / 1000.0)), nil
}

// fetchFromInfo reports the nominal MHz of the first CPU entry.
func (p *CPUFreq) fetchFromInfo(ctx context.Context) (metric.Value, error) {
	infos, err := p.info(ctx)
	if err != nil {
		return metric.Absent(), metric.Classify(err)
	}
	if len(infos) == 0 || infos[0].Mhz <= 0 {
		return metric.Absent(), metric.NewFailure(metric.ClassSourceUnavailable,
			"CPU frequency information not available")
	}
	return metric.NewScalar(round2(infos[0].Mhz)), nil
}
