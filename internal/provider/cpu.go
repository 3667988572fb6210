// CPU usage providers — overall and per-core utilization computed as
// deltas between successive jiffies samples, without blocking the caller.
// The previous sample is explicit provider state: the first fetch after
// construction establishes a baseline and reports TransientEmpty;
// subsequent fetches return true delta-based percentages.
package provider

import (
	"context"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/hostpulse/agent/internal/metric"
)

// sampleFunc gathers cumulative CPU times, aggregate or per-core.
// Overridable in tests to feed fixed jiffies.
type sampleFunc func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error)

// busyTotal splits a cumulative sample into busy and total jiffies.
func busyTotal(t cpu.TimesStat) (busy, total float64) {
	busy = t.User + t.System + t.Nice + t.Irq + t.Softirq + t.Steal
	total = busy + t.Idle + t.Iowait
	return busy, total
}

// usagePercent computes the utilization percentage between two samples.
// A zero or negative total delta (clock went nowhere, counter reset)
// reads as 0.
func usagePercent(prev, cur cpu.TimesStat) float64 {
	prevBusy, prevTotal := busyTotal(prev)
	curBusy, curTotal := busyTotal(cur)
	dTotal := curTotal - prevTotal
	dBusy := curBusy - prevBusy
	if dTotal <= 0 || dBusy < 0 {
		return 0
	}
	return round2(dBusy / dTotal * 100)
}

// CPUUsage reports overall CPU utilization as a percentage.
type CPUUsage struct {
	mu     sync.Mutex
	prev   []cpu.TimesStat
	sample sampleFunc
}

// NewCPUUsage creates an overall CPU usage provider.
func NewCPUUsage() *CPUUsage {
	return &CPUUsage{sample: cpu.TimesWithContext}
}

// Name returns the metric name.
func (p *CPUUsage) Name() string { return metric.NameCPUUsage }

// Fetch returns the utilization since the previous fetch. The first call
// records a baseline and fails with TransientEmpty.
func (p *CPUUsage) Fetch(ctx context.Context) (metric.Value, error) {
	cur, err := p.sample(ctx, false)
	if err != nil {
		return metric.Absent(), metric.Classify(err)
	}
	if len(cur) == 0 {
		return metric.Absent(), metric.NewFailure(metric.ClassParseError,
			"empty aggregate CPU sample")
	}

	p.mu.Lock()
	prev := p.prev
	p.prev = cur
	p.mu.Unlock()

	if prev == nil {
		return metric.Absent(), metric.NewFailure(metric.ClassTransientEmpty,
			"baseline CPU sample recorded, usage available on next fetch")
	}
	return metric.NewScalar(usagePercent(prev[0], cur[0])), nil
}

// PerCoreCPUUsage reports per-core CPU utilization percentages, ordered
// by core index.
type PerCoreCPUUsage struct {
	mu     sync.Mutex
	prev   []cpu.TimesStat
	sample sampleFunc
}

// NewPerCoreCPUUsage creates a per-core CPU usage provider.
func NewPerCoreCPUUsage() *PerCoreCPUUsage {
	return &PerCoreCPUUsage{sample: cpu.TimesWithContext}
}

// Name returns the metric name.
func (p *PerCoreCPUUsage) Name() string { return metric.NameCPUUsagePerCore }

// Fetch returns per-core utilization since the previous fetch. The first
// call records a baseline and fails with TransientEmpty. A core-count
// change between samples (CPU hotplug) resets the baseline.
func (p *PerCoreCPUUsage) Fetch(ctx context.Context) (metric.Value, error) {
	cur, err := p.sample(ctx, true)
	if err != nil {
		return metric.Absent(), metric.Classify(err)
	}
	if len(cur) == 0 {
		return metric.Absent(), metric.NewFailure(metric.ClassParseError,
			"empty per-core CPU sample")
	}

	p.mu.Lock()
	prev := p.prev
	p.prev = cur
	p.mu.Unlock()

	if len(prev) != len(cur) {
		return metric.Absent(), metric.NewFailure(metric.ClassTransientEmpty,
			"baseline per-core CPU sample recorded, usage available on next fetch")
	}

	usage := make([]float64, len(cur))
	for i := range cur {
		usage[i] = usagePercent(prev[i], cur[i])
	}
	return metric.NewSeries(usage), nil
}
