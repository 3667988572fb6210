// Memory provider — virtual memory statistics in megabytes.
// Uses gopsutil for the underlying /proc/meminfo read.
package provider

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/hostpulse/agent/internal/metric"
)

const bytesPerMB = 1024 * 1024

// Memory reports total/used/free memory in MB plus a usage percentage.
type Memory struct {
	// virtualMemory is the underlying source; overridable in tests.
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

// NewMemory creates a memory provider.
func NewMemory() *Memory {
	return &Memory{virtualMemory: mem.VirtualMemoryWithContext}
}

// Name returns the metric name.
func (p *Memory) Name() string { return metric.NameMemory }

// Fetch gathers memory statistics. Free reports available (reclaimable)
// memory rather than strictly-unused pages.
func (p *Memory) Fetch(ctx context.Context) (metric.Value, error) {
	v, err := p.virtualMemory(ctx)
	if err != nil {
		return metric.Absent(), metric.Classify(err)
	}
	return metric.NewFields(map[string]float64{
		"total":   round2(float64(v.Total) / bytesPerMB),
		"used":    round2(float64(v.Used) / bytesPerMB),
		"free":    round2(float64(v.Available) / bytesPerMB),
		"percent": round2(v.UsedPercent),
	}), nil
}
