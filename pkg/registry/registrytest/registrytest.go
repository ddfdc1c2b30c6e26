// Package registrytest provides an in-memory registry.Registry that counts
// every handle it hands out and every release it receives.
package registrytest

import (
	"fmt"
	"sync"

	"github.com/cloudradar-monitoring/hwprobe/pkg/registry"
)

// Node is one registry entry.
type Node struct {
	Name  string
	Props registry.Dict

	// NameErr and PropertiesErr make the corresponding Entry calls fail.
	NameErr       error
	PropertiesErr error
}

// Registry maps class names to the entries a match on that class returns.
type Registry struct {
	Classes map[string][]*Node
	// MatchErr makes Match fail for a class.
	MatchErr map[string]error
	// Invalidate makes iterators of a class stop after n entries with
	// registry.ErrIteratorInvalid.
	Invalidate map[string]int

	mu       sync.Mutex
	acquired int
	released int
	double   int
}

func New() *Registry {
	return &Registry{
		Classes:    make(map[string][]*Node),
		MatchErr:   make(map[string]error),
		Invalidate: make(map[string]int),
	}
}

// Add appends a node to a class and returns it for further tweaking.
func (r *Registry) Add(className, name string, props registry.Dict) *Node {
	n := &Node{Name: name, Props: props}
	r.Classes[className] = append(r.Classes[className], n)
	return n
}

func (r *Registry) Backend() string {
	return "registrytest"
}

func (r *Registry) Close() error {
	return nil
}

func (r *Registry) Match(className string) (registry.Iterator, error) {
	if err := r.MatchErr[className]; err != nil {
		return nil, err
	}
	limit := -1
	if n, ok := r.Invalidate[className]; ok {
		limit = n
	}
	it := &iterator{reg: r, nodes: r.Classes[className], limit: limit}
	it.handle = r.acquire()
	return it, nil
}

// Acquired is the number of handles handed out so far.
func (r *Registry) Acquired() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acquired
}

// Released is the number of distinct handles released so far.
func (r *Registry) Released() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Outstanding is Acquired minus Released.
func (r *Registry) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acquired - r.released
}

// DoubleReleases counts Release calls on already released handles.
func (r *Registry) DoubleReleases() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.double
}

// Check returns an error describing leaked or doubly released handles.
func (r *Registry) Check() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.acquired != r.released || r.double != 0 {
		return fmt.Errorf("registrytest: acquired %d, released %d, double releases %d", r.acquired, r.released, r.double)
	}
	return nil
}

type handle struct {
	reg      *Registry
	released bool
}

func (r *Registry) acquire() *handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acquired++
	return &handle{reg: r}
}

func (h *handle) release() {
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	if h.released {
		h.reg.double++
		return
	}
	h.released = true
	h.reg.released++
}

type iterator struct {
	*handle
	reg   *Registry
	nodes []*Node
	pos   int
	limit int
	err   error
}

func (it *iterator) Next() (registry.Entry, bool) {
	if it.err != nil || it.pos >= len(it.nodes) {
		return nil, false
	}
	if it.limit >= 0 && it.pos >= it.limit {
		it.err = registry.ErrIteratorInvalid
		return nil, false
	}
	n := it.nodes[it.pos]
	it.pos++
	return &entry{handle: it.reg.acquire(), node: n}, true
}

func (it *iterator) Err() error {
	return it.err
}

func (it *iterator) Release() {
	it.release()
}

type entry struct {
	*handle
	node *Node
}

func (e *entry) Name() (string, error) {
	if e.node.NameErr != nil {
		return "", e.node.NameErr
	}
	return e.node.Name, nil
}

func (e *entry) Property(key string) (registry.Property, bool) {
	v, ok := e.node.Props[key]
	if !ok {
		return nil, false
	}
	return &property{handle: e.reg.acquire(), value: v}, true
}

func (e *entry) Properties() (registry.Property, error) {
	if e.node.PropertiesErr != nil {
		return nil, e.node.PropertiesErr
	}
	return &property{handle: e.reg.acquire(), value: e.node.Props}, nil
}

func (e *entry) Release() {
	e.release()
}

type property struct {
	*handle
	value registry.Value
}

func (p *property) Value() registry.Value {
	return p.value
}

func (p *property) Release() {
	p.release()
}
