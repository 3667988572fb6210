// Battery provider — charge level and AC status from the power-supply
// sysfs class. Hosts without a battery are a legitimate Absent outcome,
// not a failure.
package provider

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hostpulse/agent/internal/metric"
)

// DefaultPowerSupplyDir is the Linux power-supply sysfs class directory.
const DefaultPowerSupplyDir = "/sys/class/power_supply"

// Battery reports charge percentage, AC status, and (when derivable)
// seconds of charge remaining.
type Battery struct {
	Dir string
}

// NewBattery creates a battery provider scanning the given power-supply
// class directory. An empty dir selects the Linux default.
func NewBattery(dir string) *Battery {
	if dir == "" {
		dir = DefaultPowerSupplyDir
	}
	return &Battery{Dir: dir}
}

// Name returns the metric name.
func (p *Battery) Name() string { return metric.NameBattery }

// Fetch scans the power-supply class for the first battery entry.
// A host with no battery (or no power-supply class at all) yields Absent
// with no failure.
func (p *Battery) Fetch(ctx context.Context) (metric.Value, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return metric.Absent(), nil
		}
		return metric.Absent(), metric.Classify(err)
	}

	for _, e := range entries {
		dir := filepath.Join(p.Dir, e.Name())
		kind, err := readTrimmedFile(filepath.Join(dir, "type"))
		if err != nil || kind != "Battery" {
			continue
		}
		return p.readBattery(dir)
	}
	return metric.Absent(), nil
}

// readBattery assembles the fields for one battery directory.
func (p *Battery) readBattery(dir string) (metric.Value, error) {
	capRaw, err := readTrimmedFile(filepath.Join(dir, "capacity"))
	if err != nil {
		return metric.Absent(), err
	}
	percent, err := strconv.ParseFloat(capRaw, 64)
	if err != nil {
		return metric.Absent(), metric.NewFailure(metric.ClassParseError,
			"malformed battery capacity %q in %s", capRaw, dir)
	}

	fields := map[string]float64{"percent": percent}

	// Discharging is the only unplugged state; Charging/Full/Not charging
	// all imply external power.
	if status, err := readTrimmedFile(filepath.Join(dir, "status")); err == nil {
		if status == "Discharging" {
			fields["power_plugged"] = 0
		} else {
			fields["power_plugged"] = 1
		}
	}

	// secs_left is derivable only when the driver exposes both charge
	// level and drain rate.
	if secs, ok := p.secondsLeft(dir); ok {
		fields["secs_left"] = secs
	}

	return metric.NewFields(fields), nil
}

// secondsLeft estimates remaining runtime from energy_now/power_now
// (µWh / µW). Returns false when either file is missing or power draw
// is zero.
func (p *Battery) secondsLeft(dir string) (float64, bool) {
	energy, err1 := readTrimmedFile(filepath.Join(dir, "energy_now"))
	power, err2 := readTrimmedFile(filepath.Join(dir, "power_now"))
	if err1 != nil || err2 != nil {
		return 0, false
	}
	e, err1 := strconv.ParseFloat(energy, 64)
	w, err2 := strconv.ParseFloat(power, 64)
	if err1 != nil || err2 != nil || w <= 0 {
		return 0, false
	}
	return round2(e / w * 3600), true
}
