package cpuinfo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSysctl struct {
	strings map[string]string
	numbers map[string]uint32
}

func (f fakeSysctl) Sysctl(name string) (string, error) {
	if v, ok := f.strings[name]; ok {
		return v, nil
	}
	return "", errors.New("no such file or directory")
}

func (f fakeSysctl) SysctlUint32(name string) (uint32, error) {
	if v, ok := f.numbers[name]; ok {
		return v, nil
	}
	return 0, errors.New("no such file or directory")
}

func TestCollect(t *testing.T) {
	r := fakeSysctl{
		strings: map[string]string{
			"machdep.cpu.brand_string": "Apple M1",
			"hw.machine":               "arm64",
		},
		numbers: map[string]uint32{
			"hw.cpufamily":   0x1b588bb3,
			"hw.physicalcpu": 8,
			"hw.logicalcpu":  8,
		},
	}

	id, err := collect(r)
	assert.NoError(t, err)
	assert.Equal(t, &Identity{
		Brand:         "Apple M1",
		Arch:          "arm64",
		Family:        0x1b588bb3,
		PhysicalCores: 8,
		LogicalCores:  8,
	}, id)
}

func TestCollectFamilyHighBit(t *testing.T) {
	r := fakeSysctl{
		strings: map[string]string{
			"machdep.cpu.brand_string": "Apple M2",
			"hw.machine":               "arm64",
		},
		numbers: map[string]uint32{
			"hw.cpufamily":   0xda33d83d,
			"hw.physicalcpu": 8,
			"hw.logicalcpu":  8,
		},
	}

	id, err := collect(r)
	assert.NoError(t, err)
	assert.Equal(t, int32(-634136515), id.Family)
}

func TestCollectPartialFailure(t *testing.T) {
	r := fakeSysctl{
		strings: map[string]string{"hw.machine": "x86_64"},
		numbers: map[string]uint32{"hw.logicalcpu": 12},
	}

	id, err := collect(r)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "machdep.cpu.brand_string")
	assert.Contains(t, err.Error(), "hw.physicalcpu")
	assert.NotContains(t, err.Error(), "hw.logicalcpu")

	assert.Equal(t, "", id.Brand)
	assert.Equal(t, "x86_64", id.Arch)
	assert.Equal(t, 0, id.PhysicalCores)
	assert.Equal(t, 12, id.LogicalCores)
}
