// Package cpuinfo identifies the host CPU through five sysctl keys.
package cpuinfo

import (
	"github.com/cloudradar-monitoring/hwprobe/pkg/common"
)

const (
	keyBrand         = "machdep.cpu.brand_string"
	keyMachine       = "hw.machine"
	keyFamily        = "hw.cpufamily"
	keyPhysicalCores = "hw.physicalcpu"
	keyLogicalCores  = "hw.logicalcpu"
)

type Identity struct {
	Brand         string
	Arch          string
	Family        int32
	PhysicalCores int
	LogicalCores  int
}

type sysctlReader interface {
	Sysctl(name string) (string, error)
	SysctlUint32(name string) (uint32, error)
}

// collect reads every key; a failed key leaves its field zeroed and is
// reported in the combined error.
func collect(r sysctlReader) (*Identity, error) {
	errs := common.ErrorCollector{}
	id := &Identity{}

	readString := func(key string, dst *string) {
		v, err := r.Sysctl(key)
		if err != nil {
			errs.Addf("sysctl %s: %s", key, err.Error())
			return
		}
		*dst = v
	}
	readUint32 := func(key string) uint32 {
		v, err := r.SysctlUint32(key)
		if err != nil {
			errs.Addf("sysctl %s: %s", key, err.Error())
			return 0
		}
		return v
	}

	readString(keyBrand, &id.Brand)
	readString(keyMachine, &id.Arch)
	id.Family = int32(readUint32(keyFamily))
	id.PhysicalCores = int(readUint32(keyPhysicalCores))
	id.LogicalCores = int(readUint32(keyLogicalCores))

	return id, errs.Combine()
}
