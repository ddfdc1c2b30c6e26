package gpu

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/cloudradar-monitoring/hwprobe/pkg/property"
	"github.com/cloudradar-monitoring/hwprobe/pkg/registry"
)

const (
	keyVRAMTotalMB    = "VRAM,totalMB"
	keyPerfStatistics = "PerformanceStatistics"
	keyTextureCount   = "textureCount"
	keyDeviceUtil     = "Device Utilization % at cur p-state"
	keyCoreUtil       = "GPU Core Utilization"
	keyVRAMFreeBytes  = "vramFreeBytes"
)

// LiveStats is one snapshot of an accelerator's counters. Every field is nil
// when its key was missing.
type LiveStats struct {
	VRAMMiB       *int32
	TextureCount  *int32
	DeviceUtil    *int
	CoreUtil      *float64
	VRAMFreeBytes *int64
}

// EnumerateLiveStats returns one LiveStats per IOAccelerator, in registry
// order. Entries whose properties cannot be read are skipped.
func EnumerateLiveStats(reg registry.Registry) []LiveStats {
	it, ok := match(reg, registry.ClassAccelerator)
	if !ok {
		return nil
	}

	var res []LiveStats
	complete := walk(it, registry.ClassAccelerator, func(entry registry.Entry) {
		if st, ok := readLiveStats(entry); ok {
			res = append(res, st)
		}
	})
	if !complete {
		return nil
	}
	return res
}

func readLiveStats(entry registry.Entry) (LiveStats, bool) {
	p, err := entry.Properties()
	if err != nil {
		logger.WithError(err).Debug("[GPU] skipping accelerator with unreadable properties")
		return LiveStats{}, false
	}
	defer p.Release()

	props, ok := p.Value().(registry.Dict)
	if !ok {
		logger.Debugf("[GPU] skipping accelerator: properties are a %s", p.Value().Kind())
		return LiveStats{}, false
	}

	if logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		logger.Debugf("[GPU] accelerator properties:\n%s", spew.Sdump(props))
	}

	return statsFromProperties(props), true
}

// statsFromProperties copies every value out of props; the result does not
// reference registry memory.
func statsFromProperties(props registry.Dict) LiveStats {
	var st LiveStats

	if v, ok := property.ScalarInt32(props, keyVRAMTotalMB); ok {
		st.VRAMMiB = &v
	}

	perf, ok := property.Nested(props, keyPerfStatistics)
	if !ok {
		return st
	}

	if v, ok := property.ScalarInt32(perf, keyTextureCount); ok {
		st.TextureCount = &v
	}
	if v, ok := property.ScalarInt32(perf, keyDeviceUtil); ok {
		util := int(v)
		st.DeviceUtil = &util
	}
	if v, ok := property.ScalarDouble(perf, keyCoreUtil); ok {
		st.CoreUtil = &v
	}
	if v, ok := property.ScalarInt(perf, keyVRAMFreeBytes); ok {
		st.VRAMFreeBytes = &v
	}

	return st
}
