// Package property turns raw registry property values into typed fields.
//
// Nothing here returns an error for malformed input: a property that is
// missing, carries the wrong type tag or is too short is simply absent.
package property

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/cloudradar-monitoring/hwprobe/pkg/registry"
)

// DefaultPackedCap is the widest blob U64LEPacked accumulates.
const DefaultPackedCap = 8

// ReadByteBlob fetches key from entry and returns a copy of its bytes.
//
// The property is absent when the entry lacks it, when it is shorter than
// minLen, or, with requireBytes set, when its type tag is not data. Without
// requireBytes a string property is accepted as its raw bytes. The property
// object is released before returning on every path.
func ReadByteBlob(entry registry.Entry, key string, minLen int, requireBytes bool) ([]byte, bool) {
	p, ok := entry.Property(key)
	if !ok {
		return nil, false
	}
	defer p.Release()

	var raw []byte
	switch v := p.Value().(type) {
	case registry.Bytes:
		raw = v
	case registry.String:
		if requireBytes {
			return nil, false
		}
		raw = []byte(v)
	default:
		return nil, false
	}

	if len(raw) < minLen {
		return nil, false
	}

	// raw may alias memory of p, which is gone after Release.
	return append([]byte(nil), raw...), true
}

// U16LE decodes the first two bytes of blob. The caller guarantees len(blob) >= 2.
func U16LE(blob []byte) uint16 {
	return binary.LittleEndian.Uint16(blob)
}

// U32LE decodes the first four bytes of blob. The caller guarantees len(blob) >= 4.
func U32LE(blob []byte) uint32 {
	return binary.LittleEndian.Uint32(blob)
}

// U64LEPacked sums blob[i] << (8*i) over the first min(len(blob), limit)
// bytes. Bytes beyond limit, or beyond eight, are ignored.
func U64LEPacked(blob []byte, limit int) uint64 {
	if limit > DefaultPackedCap {
		limit = DefaultPackedCap
	}
	if len(blob) < limit {
		limit = len(blob)
	}

	var v uint64
	for i := 0; i < limit; i++ {
		v |= uint64(blob[i]) << (uint(i) * 8)
	}
	return v
}

// CString reads blob up to its first NUL, or entirely if there is none.
func CString(blob []byte) string {
	if i := bytes.IndexByte(blob, 0); i >= 0 {
		return string(blob[:i])
	}
	return string(blob)
}

// ScalarInt looks up a numeric scalar. Doubles are truncated toward zero.
func ScalarInt(d registry.Dict, key string) (int64, bool) {
	return intValue(d[key])
}

// ScalarInt32 is ScalarInt restricted to the int32 range; wider values are
// absent rather than wrapped.
func ScalarInt32(d registry.Dict, key string) (int32, bool) {
	v, ok := ScalarInt(d, key)
	if !ok || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}

func ScalarDouble(d registry.Dict, key string) (float64, bool) {
	return doubleValue(d[key])
}

// Nested descends one level into a dictionary valued property.
func Nested(d registry.Dict, key string) (registry.Dict, bool) {
	sub, ok := d[key].(registry.Dict)
	return sub, ok
}

// ReadScalarInt is ScalarInt for a property fetched straight off an entry.
func ReadScalarInt(entry registry.Entry, key string) (int64, bool) {
	p, ok := entry.Property(key)
	if !ok {
		return 0, false
	}
	defer p.Release()
	return intValue(p.Value())
}

// ReadScalarDouble is ScalarDouble for a property fetched straight off an entry.
func ReadScalarDouble(entry registry.Entry, key string) (float64, bool) {
	p, ok := entry.Property(key)
	if !ok {
		return 0, false
	}
	defer p.Release()
	return doubleValue(p.Value())
}

func intValue(v registry.Value) (int64, bool) {
	switch n := v.(type) {
	case registry.Int:
		return int64(n), true
	case registry.Double:
		f := float64(n)
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

func doubleValue(v registry.Value) (float64, bool) {
	switch n := v.(type) {
	case registry.Double:
		return float64(n), true
	case registry.Int:
		return float64(n), true
	default:
		return 0, false
	}
}
