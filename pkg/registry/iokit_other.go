//go:build !darwin || !cgo
// +build !darwin !cgo

package registry

import "github.com/pkg/errors"

const iokitAvailable = false

// OpenIOKit is only functional on darwin builds with cgo enabled.
func OpenIOKit() (Registry, error) {
	return nil, errors.Wrap(ErrBackendUnavailable, "IOKit requires darwin with cgo enabled")
}
