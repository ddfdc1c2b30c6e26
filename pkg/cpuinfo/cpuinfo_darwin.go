//go:build darwin
// +build darwin

package cpuinfo

import "golang.org/x/sys/unix"

type unixSysctl struct{}

func (unixSysctl) Sysctl(name string) (string, error) {
	return unix.Sysctl(name)
}

func (unixSysctl) SysctlUint32(name string) (uint32, error) {
	return unix.SysctlUint32(name)
}

// Collect reads the CPU identity from sysctl.
func Collect() (*Identity, error) {
	return collect(unixSysctl{})
}
