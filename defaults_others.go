//go:build !darwin
// +build !darwin

package hwprobe

func init() {
	DefaultCfgPath = "/etc/hwprobe/hwprobe.conf"
}
