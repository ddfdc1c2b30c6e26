// Package gpu walks the I/O registry for graphics devices.
//
// EnumerateIdentities reports the static identity of every display class PCI
// device, EnumerateLiveStats the performance counters of every accelerator.
// Both own every registry handle they obtain and release it before returning.
package gpu

import (
	"github.com/sirupsen/logrus"

	"github.com/cloudradar-monitoring/hwprobe/pkg/registry"
)

var logger = logrus.WithField("package", "gpu")

// match runs one registry match call and logs its return code.
func match(reg registry.Registry, className string) (registry.Iterator, bool) {
	it, err := reg.Match(className)
	logger.Infof("Kernel's return-code: %d %d", registry.ReturnCode(err), registry.KernSuccess)
	if err != nil {
		logger.WithError(err).Debugf("[GPU] matching %s failed", className)
		return nil, false
	}
	return it, true
}

// walk calls visit for every entry of it and releases each entry afterwards.
// An iterator invalidated mid-walk voids the whole walk.
func walk(it registry.Iterator, className string, visit func(registry.Entry)) bool {
	defer it.Release()

	for {
		entry, ok := it.Next()
		if !ok {
			break
		}
		func() {
			defer entry.Release()
			visit(entry)
		}()
	}

	if err := it.Err(); err != nil {
		logger.WithError(err).Warnf("[GPU] %s iteration aborted, discarding partial results", className)
		return false
	}
	return true
}
