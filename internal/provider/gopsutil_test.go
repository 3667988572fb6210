package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/hostpulse/agent/internal/metric"
)

func TestMemory_ConvertsToMB(t *testing.T) {
	p := NewMemory()
	p.virtualMemory = func(ctx context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{
			Total:       8 * bytesPerMB * 1024, // 8 GB
			Used:        2 * bytesPerMB * 1024,
			Available:   6 * bytesPerMB * 1024,
			UsedPercent: 25.0,
		}, nil
	}

	v, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Fields["total"] != 8192 || v.Fields["used"] != 2048 || v.Fields["free"] != 6144 {
		t.Errorf("fields = %v, want total 8192 / used 2048 / free 6144 MB", v.Fields)
	}
	if v.Fields["percent"] != 25.0 {
		t.Errorf("percent = %v, want 25.0", v.Fields["percent"])
	}
}

func TestDiskUsage_ConvertsToGB(t *testing.T) {
	p := NewDiskUsage("/data")
	p.usage = func(ctx context.Context, path string) (*disk.UsageStat, error) {
		if path != "/data" {
			t.Errorf("usage path = %q, want /data", path)
		}
		return &disk.UsageStat{
			Total:       100 * bytesPerGB,
			Used:        40 * bytesPerGB,
			Free:        60 * bytesPerGB,
			UsedPercent: 40.0,
		}, nil
	}

	v, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Fields["total"] != 100 || v.Fields["used"] != 40 || v.Fields["free"] != 60 {
		t.Errorf("fields = %v, want total 100 / used 40 / free 60 GB", v.Fields)
	}
	if key := p.Key().CacheKey(); key != "disk:/data" {
		t.Errorf("cache key = %q, want disk:/data", key)
	}
}

func TestDiskUsage_BadPath(t *testing.T) {
	p := NewDiskUsage("/nope")
	p.usage = func(ctx context.Context, path string) (*disk.UsageStat, error) {
		return nil, errors.New("no such file or directory")
	}

	v, err := p.Fetch(context.Background())
	if !v.IsAbsent() {
		t.Errorf("value = %+v, want Absent", v)
	}
	if err == nil {
		t.Error("err = nil, want failure")
	}
}

func TestNetwork_PerInterfacePairs(t *testing.T) {
	p := NewNetwork()
	p.ioCounters = func(ctx context.Context, pernic bool) ([]gnet.IOCountersStat, error) {
		if !pernic {
			t.Error("ioCounters called with pernic=false")
		}
		return []gnet.IOCountersStat{
			{Name: "eth0", BytesSent: 1000, BytesRecv: 5000},
			{Name: "lo", BytesSent: 42, BytesRecv: 42},
		}, nil
	}

	v, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != metric.KindPairs || len(v.Pairs) != 2 {
		t.Fatalf("value = %+v, want 2 interface pairs", v)
	}
	if eth := v.Pairs["eth0"]; eth.Sent != 1000 || eth.Recv != 5000 {
		t.Errorf("eth0 = %+v, want sent 1000 / recv 5000", eth)
	}
}

func TestNetwork_NoInterfaces(t *testing.T) {
	p := NewNetwork()
	p.ioCounters = func(ctx context.Context, pernic bool) ([]gnet.IOCountersStat, error) {
		return nil, nil
	}

	_, err := p.Fetch(context.Background())
	if metric.ClassOf(err) != metric.ClassTransientEmpty {
		t.Errorf("class = %v, want transient_empty", metric.ClassOf(err))
	}
}

func TestUptime_Scalar(t *testing.T) {
	p := NewUptime()
	p.uptime = func(ctx context.Context) (uint64, error) { return 3600, nil }

	v, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Scalar != 3600 {
		t.Errorf("uptime = %v, want 3600", v.Scalar)
	}
}

func TestProcessCount_CountsPids(t *testing.T) {
	p := NewProcessCount()
	p.pids = func(ctx context.Context) ([]int32, error) {
		return []int32{1, 2, 3, 200}, nil
	}

	v, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v.Scalar != 4 {
		t.Errorf("process count = %v, want 4", v.Scalar)
	}
}
