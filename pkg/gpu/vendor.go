package gpu

// Vendor of a graphics device, decoded from its 16-bit PCI vendor id.
type Vendor int

const (
	VendorUnknown Vendor = iota
	VendorAMD
	VendorNvidia
	VendorIntel
	VendorApple
)

var vendorsByID = map[uint16]Vendor{
	0x1002: VendorAMD,
	0x10de: VendorNvidia,
	0x8086: VendorIntel,
	0x106b: VendorApple,
}

// LookupVendor reports false for ids outside the recognized table.
func LookupVendor(id uint16) (Vendor, bool) {
	v, ok := vendorsByID[id]
	return v, ok
}

func (v Vendor) String() string {
	switch v {
	case VendorAMD:
		return "AMD"
	case VendorNvidia:
		return "Nvidia"
	case VendorIntel:
		return "Intel"
	case VendorApple:
		return "Apple"
	default:
		return "Unknown"
	}
}
