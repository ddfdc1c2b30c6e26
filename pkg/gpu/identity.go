package gpu

import (
	"strconv"

	"github.com/cloudradar-monitoring/hwprobe/pkg/property"
	"github.com/cloudradar-monitoring/hwprobe/pkg/registry"
)

const (
	keyClassCode = "class-code"
	keyModel     = "model"
	keyVendorID  = "vendor-id"
	keyDeviceID  = "device-id"
	keyVRAMTotal = "VRAM,totalsize"

	classMask    = 0x00FF0000
	classDisplay = 0x00030000

	bytesPerMiB = 1024 * 1024
)

// Identity is the static description of one display class PCI device.
// Pointer fields are nil when the property was missing or malformed.
type Identity struct {
	Name      string
	Model     *string
	Vendor    *Vendor
	DeviceID  *string
	VRAMBytes *uint64
}

// VRAMMiB reports the video memory size in MiB.
func (id Identity) VRAMMiB() (uint64, bool) {
	if id.VRAMBytes == nil {
		return 0, false
	}
	return *id.VRAMBytes / bytesPerMiB, true
}

// IsDisplayClass reports whether a PCI class code denotes a display controller.
func IsDisplayClass(classCode uint32) bool {
	return classCode&classMask == classDisplay
}

// EnumerateIdentities returns one Identity per IOPCIDevice whose class code
// is a display controller, in registry order. A failing match call yields an
// empty result.
func EnumerateIdentities(reg registry.Registry) []Identity {
	it, ok := match(reg, registry.ClassPCIDevice)
	if !ok {
		return nil
	}

	var res []Identity
	complete := walk(it, registry.ClassPCIDevice, func(entry registry.Entry) {
		if id, ok := readIdentity(entry); ok {
			res = append(res, id)
		}
	})
	if !complete {
		return nil
	}
	return res
}

func readIdentity(entry registry.Entry) (Identity, bool) {
	blob, ok := property.ReadByteBlob(entry, keyClassCode, 4, false)
	if !ok {
		logger.Debugf("[GPU] skipping entry without a usable %s", keyClassCode)
		return Identity{}, false
	}
	if !IsDisplayClass(property.U32LE(blob)) {
		return Identity{}, false
	}

	name, err := entry.Name()
	if err != nil {
		logger.WithError(err).Debug("[GPU] skipping display controller without a name")
		return Identity{}, false
	}

	id := Identity{Name: name}

	if blob, ok := property.ReadByteBlob(entry, keyModel, 1, true); ok {
		model := property.CString(blob)
		id.Model = &model
	}

	if blob, ok := property.ReadByteBlob(entry, keyVendorID, 2, false); ok {
		if vendor, ok := LookupVendor(property.U16LE(blob)); ok {
			id.Vendor = &vendor
		}
	}

	if blob, ok := property.ReadByteBlob(entry, keyDeviceID, 2, false); ok {
		devID := strconv.FormatUint(uint64(property.U16LE(blob)), 16)
		id.DeviceID = &devID
	}

	if blob, ok := property.ReadByteBlob(entry, keyVRAMTotal, 2, true); ok {
		vram := property.U64LEPacked(blob, property.DefaultPackedCap)
		id.VRAMBytes = &vram
	}

	return id, true
}
