// Uptime provider — seconds since last boot.
// Uses gopsutil for the underlying /proc/uptime read.
package provider

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/hostpulse/agent/internal/metric"
)

// Uptime reports system uptime in seconds.
type Uptime struct {
	// uptime is the underlying source; overridable in tests.
	uptime func(ctx context.Context) (uint64, error)
}

// NewUptime creates an uptime provider.
func NewUptime() *Uptime {
	return &Uptime{uptime: host.UptimeWithContext}
}

// Name returns the metric name.
func (p *Uptime) Name() string { return metric.NameUptime }

// Fetch gathers the uptime in seconds since boot.
func (p *Uptime) Fetch(ctx context.Context) (metric.Value, error) {
	seconds, err := p.uptime(ctx)
	if err != nil {
		return metric.Absent(), metric.Classify(err)
	}
	return metric.NewScalar(float64(seconds)), nil
}
