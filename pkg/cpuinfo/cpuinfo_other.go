//go:build !darwin
// +build !darwin

package cpuinfo

import (
	"runtime"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/cpu"

	"github.com/cloudradar-monitoring/hwprobe/pkg/common"
)

// Collect approximates the darwin sysctl keys with gopsutil so the probe
// still prints a CPU section on development hosts.
func Collect() (*Identity, error) {
	errs := common.ErrorCollector{}
	id := &Identity{Arch: runtime.GOARCH}

	infos, err := cpu.Info()
	if err != nil {
		errs.New(errors.Wrap(err, "could not read cpu info"))
	} else if len(infos) > 0 {
		id.Brand = infos[0].ModelName
		if family, err := strconv.ParseInt(infos[0].Family, 10, 32); err == nil {
			id.Family = int32(family)
		}
	}

	if id.PhysicalCores, err = cpu.Counts(false); err != nil {
		errs.New(errors.Wrap(err, "could not count physical cores"))
	}
	if id.LogicalCores, err = cpu.Counts(true); err != nil {
		errs.New(errors.Wrap(err, "could not count logical cores"))
	}

	return id, errs.Combine()
}
