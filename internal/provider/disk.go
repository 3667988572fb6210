// Disk usage provider — usage statistics in gigabytes for one filesystem
// path. One provider instance serves one path; the monitor constructs
// instances on demand so each path is fetched and cached independently.
package provider

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/hostpulse/agent/internal/metric"
)

const bytesPerGB = 1024 * 1024 * 1024

// DefaultDiskPath is the path measured by the unparameterized disk metric.
const DefaultDiskPath = "/"

// DiskUsage reports total/used/free space in GB plus a usage percentage
// for its configured path.
type DiskUsage struct {
	Path string

	// usage is the underlying source; overridable in tests.
	usage func(ctx context.Context, path string) (*disk.UsageStat, error)
}

// NewDiskUsage creates a disk usage provider for the given path.
// An empty path selects the filesystem root.
func NewDiskUsage(path string) *DiskUsage {
	if path == "" {
		path = DefaultDiskPath
	}
	return &DiskUsage{Path: path, usage: disk.UsageWithContext}
}

// Name returns the metric name.
func (p *DiskUsage) Name() string { return metric.NameDisk }

// Key returns the parameterized metric key for this provider's path.
func (p *DiskUsage) Key() metric.Key { return metric.DiskKey(p.Path) }

// Fetch gathers usage statistics for the configured path.
func (p *DiskUsage) Fetch(ctx context.Context) (metric.Value, error) {
	u, err := p.usage(ctx, p.Path)
	if err != nil {
		return metric.Absent(), metric.Classify(err)
	}
	return metric.NewFields(map[string]float64{
		"total":   round2(float64(u.Total) / bytesPerGB),
		"used":    round2(float64(u.Used) / bytesPerGB),
		"free":    round2(float64(u.Free) / bytesPerGB),
		"percent": round2(u.UsedPercent),
	}), nil
}
