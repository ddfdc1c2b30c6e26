//go:build darwin && cgo
// +build darwin,cgo

package registry

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation
#include <stdlib.h>
#include <AvailabilityMacros.h>
#include <mach/mach.h>
#include <CoreFoundation/CoreFoundation.h>
#include <IOKit/IOKitLib.h>

// kIOMasterPortDefault was renamed in macOS 12; pick the spelling that
// matches the deployment target.
#if defined(MAC_OS_VERSION_12_0) && MAC_OS_X_VERSION_MIN_REQUIRED >= MAC_OS_VERSION_12_0
#define HWPROBE_MAIN_PORT kIOMainPortDefault
#define HWPROBE_MAIN_PORT_NAME "kIOMainPortDefault"
#else
#define HWPROBE_MAIN_PORT kIOMasterPortDefault
#define HWPROBE_MAIN_PORT_NAME "kIOMasterPortDefault"
#endif

static const char *hwprobe_main_port_name(void) {
	return HWPROBE_MAIN_PORT_NAME;
}

static kern_return_t hwprobe_open(mach_port_t *port) {
#if defined(MAC_OS_VERSION_12_0) && MAC_OS_X_VERSION_MIN_REQUIRED >= MAC_OS_VERSION_12_0
	return IOMainPort(MACH_PORT_NULL, port);
#else
	return IOMasterPort(MACH_PORT_NULL, port);
#endif
}

static void hwprobe_close(mach_port_t port) {
	mach_port_deallocate(mach_task_self(), port);
}

// The matching dictionary is consumed by IOServiceGetMatchingServices.
static kern_return_t hwprobe_match(const char *class_name, io_iterator_t *iter) {
	return IOServiceGetMatchingServices(HWPROBE_MAIN_PORT, IOServiceMatching(class_name), iter);
}

static kern_return_t hwprobe_entry_name(io_registry_entry_t entry, char *name) {
	return IORegistryEntryGetName(entry, name);
}

static CFTypeRef hwprobe_copy_property(io_registry_entry_t entry, const char *key) {
	CFStringRef cfkey = CFStringCreateWithCString(kCFAllocatorDefault, key, kCFStringEncodingUTF8);
	if (cfkey == NULL) {
		return NULL;
	}
	CFTypeRef ref = IORegistryEntryCreateCFProperty(entry, cfkey, kCFAllocatorDefault, 0);
	CFRelease(cfkey);
	return ref;
}

static kern_return_t hwprobe_copy_properties(io_registry_entry_t entry, CFMutableDictionaryRef *props) {
	return IORegistryEntryCreateCFProperties(entry, props, kCFAllocatorDefault, 0);
}

// Caller frees the result.
static char *hwprobe_string(CFStringRef s) {
	CFIndex len = CFStringGetLength(s);
	CFIndex size = CFStringGetMaximumSizeForEncoding(len, kCFStringEncodingUTF8) + 1;
	char *buf = malloc(size);
	if (buf == NULL) {
		return NULL;
	}
	if (!CFStringGetCString(s, buf, size, kCFStringEncodingUTF8)) {
		free(buf);
		return NULL;
	}
	return buf;
}

static void hwprobe_dict_entries(CFDictionaryRef d, CFTypeRef *keys, CFTypeRef *values) {
	CFDictionaryGetKeysAndValues(d, (const void **)keys, (const void **)values);
}

static Boolean hwprobe_number_int(CFNumberRef n, long long *out) {
	return CFNumberGetValue(n, kCFNumberSInt64Type, out);
}

static Boolean hwprobe_number_double(CFNumberRef n, double *out) {
	return CFNumberGetValue(n, kCFNumberFloat64Type, out);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

const iokitAvailable = true

// io_name_t
const ioNameSize = 128

type iokitRegistry struct {
	port   C.mach_port_t
	closed bool
}

// OpenIOKit connects to the IOKit main port.
func OpenIOKit() (Registry, error) {
	r := &iokitRegistry{}
	if kr := C.hwprobe_open(&r.port); kr != C.KERN_SUCCESS {
		return nil, &KernError{Op: "IOMainPort", Code: int(kr)}
	}
	logger.Debugf("IOKit registry opened via %s", C.GoString(C.hwprobe_main_port_name()))
	return r, nil
}

func (r *iokitRegistry) Backend() string {
	return BackendIOKit
}

func (r *iokitRegistry) Close() error {
	if !r.closed {
		C.hwprobe_close(r.port)
		r.closed = true
	}
	return nil
}

func (r *iokitRegistry) Match(className string) (Iterator, error) {
	cname := C.CString(className)
	defer C.free(unsafe.Pointer(cname))

	var iter C.io_iterator_t
	if kr := C.hwprobe_match(cname, &iter); kr != C.KERN_SUCCESS {
		return nil, &KernError{Op: "IOServiceGetMatchingServices", Code: int(kr)}
	}
	return &iokitIterator{iter: iter}, nil
}

type iokitIterator struct {
	iter     C.io_iterator_t
	err      error
	released bool
}

func (it *iokitIterator) Next() (Entry, bool) {
	if it.released || it.err != nil {
		return nil, false
	}
	obj := C.IOIteratorNext(it.iter)
	if obj == 0 {
		if C.IOIteratorIsValid(it.iter) == 0 {
			it.err = ErrIteratorInvalid
		}
		return nil, false
	}
	return &iokitEntry{obj: obj}, true
}

func (it *iokitIterator) Err() error {
	return it.err
}

func (it *iokitIterator) Release() {
	if it.released {
		return
	}
	C.IOObjectRelease(C.io_object_t(it.iter))
	it.released = true
}

type iokitEntry struct {
	obj      C.io_object_t
	released bool
}

func (e *iokitEntry) Name() (string, error) {
	var buf [ioNameSize]C.char
	if kr := C.hwprobe_entry_name(C.io_registry_entry_t(e.obj), &buf[0]); kr != C.KERN_SUCCESS {
		return "", &KernError{Op: "IORegistryEntryGetName", Code: int(kr)}
	}
	return C.GoString(&buf[0]), nil
}

func (e *iokitEntry) Property(key string) (Property, bool) {
	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))

	ref := C.hwprobe_copy_property(C.io_registry_entry_t(e.obj), ckey)
	if ref == 0 {
		return nil, false
	}
	return &cfProperty{ref: ref}, true
}

func (e *iokitEntry) Properties() (Property, error) {
	var props C.CFMutableDictionaryRef
	if kr := C.hwprobe_copy_properties(C.io_registry_entry_t(e.obj), &props); kr != C.KERN_SUCCESS {
		return nil, &KernError{Op: "IORegistryEntryCreateCFProperties", Code: int(kr)}
	}
	if props == 0 {
		return nil, &KernError{Op: "IORegistryEntryCreateCFProperties", Code: ioReturnNotFound}
	}
	return &cfProperty{ref: C.CFTypeRef(props)}, nil
}

func (e *iokitEntry) Release() {
	if e.released {
		return
	}
	C.IOObjectRelease(e.obj)
	e.released = true
}

// cfProperty owns one retain on ref. Bytes returned by Value alias the
// CFData storage and die with the property.
type cfProperty struct {
	ref      C.CFTypeRef
	released bool
}

func (p *cfProperty) Value() Value {
	return fromCF(p.ref)
}

func (p *cfProperty) Release() {
	if p.released {
		return
	}
	C.CFRelease(p.ref)
	p.released = true
}

func fromCF(ref C.CFTypeRef) Value {
	if ref == 0 {
		return Opaque{TypeName: "null"}
	}

	switch id := C.CFGetTypeID(ref); id {
	case C.CFDataGetTypeID():
		data := C.CFDataRef(ref)
		n := int(C.CFDataGetLength(data))
		if n == 0 {
			return Bytes{}
		}
		return Bytes(unsafe.Slice((*byte)(unsafe.Pointer(C.CFDataGetBytePtr(data))), n))
	case C.CFNumberGetTypeID():
		num := C.CFNumberRef(ref)
		if C.CFNumberIsFloatType(num) != 0 {
			var f C.double
			C.hwprobe_number_double(num, &f)
			return Double(f)
		}
		var i C.longlong
		C.hwprobe_number_int(num, &i)
		return Int(i)
	case C.CFBooleanGetTypeID():
		return Bool(C.CFBooleanGetValue(C.CFBooleanRef(ref)) != 0)
	case C.CFStringGetTypeID():
		return String(stringFromCF(C.CFStringRef(ref)))
	case C.CFDictionaryGetTypeID():
		return dictFromCF(C.CFDictionaryRef(ref))
	case C.CFArrayGetTypeID():
		arr := C.CFArrayRef(ref)
		n := int(C.CFArrayGetCount(arr))
		out := make(Array, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, fromCF(C.CFTypeRef(C.CFArrayGetValueAtIndex(arr, C.CFIndex(i)))))
		}
		return out
	default:
		return Opaque{TypeName: fmt.Sprintf("CFTypeID(%d)", uint64(id))}
	}
}

func stringFromCF(s C.CFStringRef) string {
	cs := C.hwprobe_string(s)
	if cs == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(cs))
	return C.GoString(cs)
}

// Values of the returned Dict borrow from d.
func dictFromCF(d C.CFDictionaryRef) Dict {
	n := int(C.CFDictionaryGetCount(d))
	out := make(Dict, n)
	if n == 0 {
		return out
	}

	keys := make([]C.CFTypeRef, n)
	values := make([]C.CFTypeRef, n)
	C.hwprobe_dict_entries(d, &keys[0], &values[0])

	for i := 0; i < n; i++ {
		if C.CFGetTypeID(keys[i]) != C.CFStringGetTypeID() {
			continue
		}
		out[stringFromCF(C.CFStringRef(keys[i]))] = fromCF(values[i])
	}
	return out
}
