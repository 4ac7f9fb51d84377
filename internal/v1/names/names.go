// Package names owns the process-wide set of display handles and the
// lexical rules shared by handles and room names.
package names

import (
	"sync"

	"k8s.io/utils/set"
)

const (
	// MinLen and MaxLen bound handle and room name length in bytes.
	MinLen = 2
	MaxLen = 20
)

// Valid reports whether name satisfies the naming rules: MinLen–MaxLen
// bytes, each an ASCII letter, digit, '-' or '_'.
func Valid(name string) bool {
	if len(name) < MinLen || len(name) > MaxLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case 'a' <= c && c <= 'z':
		case 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

// Registry is the concurrent set of handles currently in use. Every active
// session owns exactly one entry; renames insert the new handle before the
// old one is released.
type Registry struct {
	mu    sync.Mutex
	inUse set.Set[string]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{inUse: set.New[string]()}
}

// ReserveUnique draws candidates from generate until one inserts, and
// returns it. The insert is atomic against concurrent reserves and
// releases; two sessions can never win the same handle.
func (r *Registry) ReserveUnique(generate func() string) string {
	for {
		name := generate()
		if r.TryInsert(name) {
			return name
		}
	}
}

// TryInsert adds name if it is not taken and reports whether it did.
func (r *Registry) TryInsert(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inUse.Has(name) {
		return false
	}
	r.inUse.Insert(name)
	return true
}

// Release frees name. Releasing a name that is not present is a no-op.
func (r *Registry) Release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inUse.Delete(name)
}

// Len reports how many handles are currently reserved.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inUse.Len()
}
