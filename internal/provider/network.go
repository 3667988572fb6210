// Network provider — cumulative sent/received byte counters per
// interface. Uses gopsutil for the underlying /proc/net/dev read.
package provider

import (
	"context"

	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/hostpulse/agent/internal/metric"
)

// Network reports one sent/recv byte pair per interface name.
type Network struct {
	// ioCounters is the underlying source; overridable in tests.
	ioCounters func(ctx context.Context, pernic bool) ([]gnet.IOCountersStat, error)
}

// NewNetwork creates a network statistics provider.
func NewNetwork() *Network {
	return &Network{ioCounters: gnet.IOCountersWithContext}
}

// Name returns the metric name.
func (p *Network) Name() string { return metric.NameNetwork }

// Fetch gathers per-interface byte counters. A host with no interfaces
// (or none readable) reports TransientEmpty.
func (p *Network) Fetch(ctx context.Context) (metric.Value, error) {
	counters, err := p.ioCounters(ctx, true)
	if err != nil {
		return metric.Absent(), metric.Classify(err)
	}
	if len(counters) == 0 {
		return metric.Absent(), metric.NewFailure(metric.ClassTransientEmpty,
			"no network interfaces reported")
	}
	pairs := make(map[string]metric.Pair, len(counters))
	for _, c := range counters {
		pairs[c.Name] = metric.Pair{
			Sent: float64(c.BytesSent),
			Recv: float64(c.BytesRecv),
		}
	}
	return metric.NewPairs(pairs), nil
}
