package registry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helperOpenSnapshot(t *testing.T) *Ioreg {
	r, err := OpenIoreg(WithSnapshotDir("testdata"))
	require.NoError(t, err)
	return r
}

func TestIoregSnapshotPCIDevices(t *testing.T) {
	r := helperOpenSnapshot(t)
	assert.Equal(t, BackendIoreg, r.Backend())

	it, err := r.Match(ClassPCIDevice)
	require.NoError(t, err)
	defer it.Release()

	var names []string
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		name, err := e.Name()
		assert.NoError(t, err)
		names = append(names, name)
		e.Release()
	}
	assert.NoError(t, it.Err())
	assert.Equal(t, []string{"GFX0", "ethernet", "IGPU"}, names)
}

func TestIoregSnapshotPropertyKinds(t *testing.T) {
	r := helperOpenSnapshot(t)

	it, err := r.Match(ClassPCIDevice)
	require.NoError(t, err)
	defer it.Release()

	e, ok := it.Next()
	require.True(t, ok)
	defer e.Release()

	p, ok := e.Property("class-code")
	require.True(t, ok)
	assert.Equal(t, Bytes{0x00, 0x00, 0x03, 0x00}, p.Value())
	p.Release()

	p, ok = e.Property("IOPCIExpressLinkStatus")
	require.True(t, ok)
	assert.Equal(t, Int(4163), p.Value())
	p.Release()

	_, ok = e.Property("no-such-key")
	assert.False(t, ok)

	all, err := e.Properties()
	require.NoError(t, err)
	defer all.Release()
	props, ok := all.Value().(Dict)
	require.True(t, ok)
	assert.Equal(t, String("GFX0"), props[KeyEntryName])
	assert.NotContains(t, props, keyEntryChildren)
}

func TestIoregSnapshotAccelerator(t *testing.T) {
	r := helperOpenSnapshot(t)

	it, err := r.Match(ClassAccelerator)
	require.NoError(t, err)
	defer it.Release()

	e, ok := it.Next()
	require.True(t, ok)
	defer e.Release()

	all, err := e.Properties()
	require.NoError(t, err)
	defer all.Release()

	props := all.Value().(Dict)
	perf, ok := props["PerformanceStatistics"].(Dict)
	require.True(t, ok)
	assert.Equal(t, Double(12.5), perf["GPU Core Utilization"])
	assert.Equal(t, Int(1073741824), perf["vramFreeBytes"])
}

func TestIoregSnapshotMissingClass(t *testing.T) {
	r := helperOpenSnapshot(t)

	_, err := r.Match("IOUSBHostDevice")
	assert.Error(t, err)
	assert.Equal(t, ioReturnNotFound, ReturnCode(err))
}

func TestOpenIoregBadSnapshotDir(t *testing.T) {
	_, err := OpenIoreg(WithSnapshotDir("testdata/does-not-exist"))
	assert.Error(t, err)
}

func TestParseIoregArchiveEmpty(t *testing.T) {
	nodes, err := parseIoregArchive([]byte("\n"))
	assert.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestFromPlist(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want Value
	}{
		{"data", []byte{1, 2}, Bytes{1, 2}},
		{"unsigned", uint64(7), Int(7)},
		{"unsigned-max", uint64(math.MaxInt64), Int(math.MaxInt64)},
		{"unsigned-overflow", uint64(math.MaxInt64) + 1, Opaque{TypeName: "uint64"}},
		{"signed", int64(-7), Int(-7)},
		{"real", 0.25, Double(0.25)},
		{"string", "x", String("x")},
		{"bool", true, Bool(true)},
		{"array", []interface{}{"a", uint64(1)}, Array{String("a"), Int(1)}},
		{"dict", map[string]interface{}{"k": uint64(1)}, Dict{"k": Int(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fromPlist(tt.in))
		})
	}
	assert.Equal(t, KindOpaque, fromPlist(struct{}{}).Kind())
}

func TestReturnCode(t *testing.T) {
	assert.Equal(t, KernSuccess, ReturnCode(nil))
	assert.Equal(t, 5, ReturnCode(&KernError{Op: "x", Code: 5}))
	assert.Equal(t, -1, ReturnCode(ErrBackendUnavailable))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Options{Backend: "wmi"})
	assert.Error(t, err)
}

func TestOpenAutoWithSnapshot(t *testing.T) {
	r, err := Open(Options{Backend: BackendAuto, SnapshotDir: "testdata"})
	require.NoError(t, err)
	assert.Equal(t, BackendIoreg, r.Backend())
	assert.NoError(t, r.Close())
}
