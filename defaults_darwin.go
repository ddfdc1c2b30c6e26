//go:build darwin
// +build darwin

package hwprobe

import (
	"os"
)

func init() {
	DefaultCfgPath = os.Getenv("HOME") + "/.hwprobe/hwprobe.conf"
}
