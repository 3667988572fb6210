// Load average provider — parses the /proc/loadavg pseudo-file into the
// 1/5/15-minute load triple.
package provider

import (
	"context"
	"strconv"
	"strings"

	"github.com/hostpulse/agent/internal/metric"
)

// DefaultLoadAvgPath is the Linux load average pseudo-file.
const DefaultLoadAvgPath = "/proc/loadavg"

// LoadAvg reports the 1, 5, and 15-minute load averages.
type LoadAvg struct {
	Path string
}

// NewLoadAvg creates a load average provider reading the given file.
// An empty path selects the Linux default.
func NewLoadAvg(path string) *LoadAvg {
	if path == "" {
		path = DefaultLoadAvgPath
	}
	return &LoadAvg{Path: path}
}

// Name returns the metric name.
func (p *LoadAvg) Name() string { return metric.NameLoadAvg }

// Fetch parses the first three fields of the loadavg file, e.g.
// "0.10 0.20 0.30 2/517 12345" yields (0.10, 0.20, 0.30).
func (p *LoadAvg) Fetch(ctx context.Context) (metric.Value, error) {
	line, err := readTrimmedFile(p.Path)
	if err != nil {
		return metric.Absent(), err
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return metric.Absent(), metric.NewFailure(metric.ClassParseError,
			"malformed loadavg line %q in %s", line, p.Path)
	}
	var loads [3]float64
	for i := 0; i < 3; i++ {
		loads[i], err = strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return metric.Absent(), metric.NewFailure(metric.ClassParseError,
				"malformed loadavg field %q in %s", fields[i], p.Path)
		}
	}
	return metric.NewTriple(loads[0], loads[1], loads[2]), nil
}
