package registry

import "github.com/pkg/errors"

const (
	BackendAuto  = "auto"
	BackendIOKit = "iokit"
	BackendIoreg = "ioreg"
)

type Options struct {
	Backend     string
	IoregPath   string
	SnapshotDir string
}

// Open picks a backend. With BackendAuto a snapshot directory wins, then the
// IOKit backend when compiled in, then the ioreg executable.
func Open(opts Options) (Registry, error) {
	switch opts.Backend {
	case "", BackendAuto:
		if opts.SnapshotDir == "" && iokitAvailable {
			return OpenIOKit()
		}
		return openIoreg(opts)
	case BackendIOKit:
		return OpenIOKit()
	case BackendIoreg:
		return openIoreg(opts)
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", opts.Backend)
	}
}

func openIoreg(opts Options) (Registry, error) {
	r, err := OpenIoreg(ioregOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func ioregOptions(opts Options) []IoregOption {
	var res []IoregOption
	if opts.IoregPath != "" {
		res = append(res, WithIoregPath(opts.IoregPath))
	}
	if opts.SnapshotDir != "" {
		res = append(res, WithSnapshotDir(opts.SnapshotDir))
	}
	return res
}
