package registry

import (
	"bufio"
	"bytes"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"howett.net/plist"
)

const (
	defaultIoregPath = "ioreg"

	keyEntryChildren = "IORegistryEntryChildren"
)

// Ioreg reads the registry through the archived (XML plist) output of
// ioreg(8), or replays such output from <SnapshotDir>/<Class>.plist.
type Ioreg struct {
	path        string
	snapshotDir string
}

// IoregOption callback for Ioreg options
type IoregOption func(*Ioreg) error

func WithIoregPath(val string) IoregOption {
	return func(r *Ioreg) error {
		if val == "" {
			return errors.New("ioreg: empty path to ioreg executable")
		}
		r.path = val
		return nil
	}
}

func WithSnapshotDir(dir string) IoregOption {
	return func(r *Ioreg) error {
		st, err := os.Stat(dir)
		if err != nil {
			return errors.Wrap(err, "ioreg: snapshot dir")
		}
		if !st.IsDir() {
			return errors.Errorf("ioreg: snapshot path %s is not a directory", dir)
		}
		r.snapshotDir = dir
		return nil
	}
}

func OpenIoreg(opts ...IoregOption) (*Ioreg, error) {
	r := &Ioreg{path: defaultIoregPath}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, errors.Wrap(ErrBackendUnavailable, err.Error())
		}
	}

	if r.snapshotDir != "" {
		logger.Debugf("replaying registry snapshots from %s", r.snapshotDir)
		return r, nil
	}

	path, err := exec.LookPath(r.path)
	if err != nil {
		return nil, errors.Wrapf(ErrBackendUnavailable, "ioreg executable %q: %s", r.path, err.Error())
	}
	r.path = path
	logger.Debugf("using %s", path)
	return r, nil
}

func (r *Ioreg) Backend() string {
	return BackendIoreg
}

func (r *Ioreg) Close() error {
	return nil
}

func (r *Ioreg) Match(className string) (Iterator, error) {
	var raw []byte
	var err error
	if r.snapshotDir != "" {
		raw, err = r.readSnapshot(className)
	} else {
		raw, err = r.run(className)
	}
	if err != nil {
		return nil, err
	}

	nodes, err := parseIoregArchive(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse ioreg output for class %s", className)
	}
	return &ioregIterator{nodes: nodes}, nil
}

func (r *Ioreg) readSnapshot(className string) ([]byte, error) {
	path := filepath.Join(r.snapshotDir, className+".plist")
	raw, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &KernError{Op: "read snapshot " + path, Code: ioReturnNotFound}
	}
	return raw, errors.Wrapf(err, "could not read snapshot %s", path)
}

// run executes `ioreg -a -l -r -d 1 -c <class>`: every service conforming to
// the class, one level deep, archived with its properties.
func (r *Ioreg) run(className string) ([]byte, error) {
	cmd := exec.Command(r.path, "-a", "-l", "-r", "-d", "1", "-c", className)
	buf := bytes.Buffer{}
	w := bufio.NewWriter(&buf)
	cmd.Stdout = w

	started := time.Now()
	err := cmd.Run()
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	logger.Debugf("ioreg -c %s took %s", className, time.Since(started))

	if exitErr, ok := err.(*exec.ExitError); ok {
		return nil, &KernError{Op: "ioreg -c " + className, Code: exitErr.ExitCode()}
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not execute ioreg")
	}
	return buf.Bytes(), nil
}

// parseIoregArchive decodes the top level array of an ioreg archive. Empty
// output means nothing matched.
func parseIoregArchive(raw []byte) ([]map[string]interface{}, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var nodes []map[string]interface{}
	if _, err := plist.Unmarshal(raw, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

type ioregIterator struct {
	nodes    []map[string]interface{}
	pos      int
	released bool
}

func (it *ioregIterator) Next() (Entry, bool) {
	if it.released || it.pos >= len(it.nodes) {
		return nil, false
	}
	node := it.nodes[it.pos]
	it.pos++
	return &ioregEntry{node: node}, true
}

func (it *ioregIterator) Err() error {
	return nil
}

func (it *ioregIterator) Release() {
	it.released = true
	it.nodes = nil
}

type ioregEntry struct {
	node map[string]interface{}
}

func (e *ioregEntry) Name() (string, error) {
	name, ok := e.node[KeyEntryName].(string)
	if !ok {
		return "", &KernError{Op: "IORegistryEntryGetName", Code: ioReturnNotFound}
	}
	return name, nil
}

func (e *ioregEntry) Property(key string) (Property, bool) {
	v, ok := e.node[key]
	if !ok {
		return nil, false
	}
	return ioregProperty{value: fromPlist(v)}, true
}

func (e *ioregEntry) Properties() (Property, error) {
	props := make(Dict, len(e.node))
	for k, v := range e.node {
		if k == keyEntryChildren {
			continue
		}
		props[k] = fromPlist(v)
	}
	return ioregProperty{value: props}, nil
}

func (e *ioregEntry) Release() {}

type ioregProperty struct {
	value Value
}

func (p ioregProperty) Value() Value {
	return p.value
}

func (p ioregProperty) Release() {}

func fromPlist(v interface{}) Value {
	switch t := v.(type) {
	case []byte:
		return Bytes(t)
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case uint64:
		if t > math.MaxInt64 {
			return Opaque{TypeName: "uint64"}
		}
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Double(t)
	case float32:
		return Double(float64(t))
	case map[string]interface{}:
		d := make(Dict, len(t))
		for k, e := range t {
			d[k] = fromPlist(e)
		}
		return d
	case []interface{}:
		a := make(Array, 0, len(t))
		for _, e := range t {
			a = append(a, fromPlist(e))
		}
		return a
	default:
		return Opaque{TypeName: fmt.Sprintf("%T", v)}
	}
}
