// Package metric defines the metric identifiers, the tagged value union,
// and the failure taxonomy shared by the cache, registry, and collector.
package metric

// Metric names. These are the strings accepted by the batch collection API
// and used as keys in a Result.
const (
	NameCPUTemp         = "cpu_temp"
	NameGPUTemp         = "gpu_temp"
	NameCPUUsage        = "cpu_usage"
	NameCPUUsagePerCore = "cpu_usage_per_core"
	NameCPUFreq         = "cpu_freq"
	NameMemory          = "memory"
	NameDisk            = "disk"
	NameNetwork         = "network"
	NameUptime          = "uptime"
	NameLoadAvg         = "load_avg"
	NameProcesses       = "processes"
	NameBattery         = "battery"
)

// Key identifies one metric. Most metrics are identified by name alone;
// disk usage additionally carries the filesystem path it was measured at,
// so two paths never share a cache slot.
type Key struct {
	Name  string
	Param string
}

// NewKey returns a plain (unparameterized) key.
func NewKey(name string) Key { return Key{Name: name} }

// DiskKey returns the disk-usage key for the given filesystem path.
func DiskKey(path string) Key { return Key{Name: NameDisk, Param: path} }

// CacheKey returns the string under which this metric is cached.
// Parameterized keys incorporate the parameter so each variant is
// cached independently.
func (k Key) CacheKey() string {
	if k.Param == "" {
		return k.Name
	}
	return k.Name + ":" + k.Param
}
