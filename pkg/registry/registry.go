// Package registry gives read-only access to the host I/O registry.
//
// Every Iterator, Entry and Property handed out by a Registry is owned by the
// caller and must be released exactly once, on every exit path.
package registry

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	ClassPCIDevice   = "IOPCIDevice"
	ClassAccelerator = "IOAccelerator"

	// KeyEntryName is the pseudo property carrying the entry name in archived
	// registry dumps.
	KeyEntryName = "IORegistryEntryName"
)

// KernSuccess is the return code of a successful registry call.
const KernSuccess = 0

// kIOReturnNotFound
const ioReturnNotFound = -0x1ffffd10

var logger = logrus.WithField("package", "registry")

var (
	ErrBackendUnavailable = errors.New("registry: backend unavailable")
	ErrIteratorInvalid    = errors.New("registry: iterator invalidated by a registry change")
	ErrUnknownBackend     = errors.New("registry: unknown backend")
)

// KernError reports a non-success return code of a registry call.
type KernError struct {
	Op   string
	Code int
}

func (e *KernError) Error() string {
	return fmt.Sprintf("registry: %s returned %d (0x%x)", e.Op, e.Code, uint32(e.Code))
}

// ReturnCode maps the error of a registry call back to the kernel return code
// it stands for.
func ReturnCode(err error) int {
	if err == nil {
		return KernSuccess
	}
	var kerr *KernError
	if errors.As(err, &kerr) {
		return kerr.Code
	}
	return -1
}

type Registry interface {
	// Match returns an iterator over all services conforming to className.
	Match(className string) (Iterator, error)
	// Backend names the implementation, for diagnostics.
	Backend() string
	Close() error
}

type Iterator interface {
	// Next returns the next entry, or false once the iteration is exhausted.
	Next() (Entry, bool)
	// Err is non-nil when the iteration stopped early, e.g. because the
	// registry changed underneath it.
	Err() error
	Release()
}

type Entry interface {
	Name() (string, error)
	// Property returns the named property or false if the entry has none.
	Property(key string) (Property, bool)
	// Properties returns all properties of the entry as one Dict property.
	Properties() (Property, error)
	Release()
}

type Property interface {
	Value() Value
	Release()
}
