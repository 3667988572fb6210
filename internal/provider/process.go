// Process count provider — number of live processes on the host.
// Uses gopsutil for the underlying /proc enumeration.
package provider

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/hostpulse/agent/internal/metric"
)

// ProcessCount reports the number of running processes.
type ProcessCount struct {
	// pids is the underlying source; overridable in tests.
	pids func(ctx context.Context) ([]int32, error)
}

// NewProcessCount creates a process count provider.
func NewProcessCount() *ProcessCount {
	return &ProcessCount{pids: process.PidsWithContext}
}

// Name returns the metric name.
func (p *ProcessCount) Name() string { return metric.NameProcesses }

// Fetch counts the PIDs currently visible in /proc.
func (p *ProcessCount) Fetch(ctx context.Context) (metric.Value, error) {
	pids, err := p.pids(ctx)
	if err != nil {
		return metric.Absent(), metric.Classify(err)
	}
	return metric.NewScalar(float64(len(pids))), nil
}
