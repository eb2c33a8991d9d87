package common

import (
	"fmt"

	"github.com/dargueta/blocksim"
)

// Registry maps filenames to an engine's per-file metadata. Each engine
// instance owns exactly one registry; a name maps to at most one live entry.
type Registry[F any] struct {
	entries map[string]*F
}

// NewRegistry creates an empty file registry.
func NewRegistry[F any]() *Registry[F] {
	return &Registry[F]{entries: make(map[string]*F)}
}

// Add registers a new file. It fails with [blocksim.ErrExists] if the name
// is already registered.
func (r *Registry[F]) Add(name string, file *F) error {
	if _, ok := r.entries[name]; ok {
		return blocksim.ErrExists.WithMessage(
			fmt.Sprintf("filename %q already taken", name))
	}
	r.entries[name] = file
	return nil
}

// Get returns the metadata registered under `name`, failing with
// [blocksim.ErrNotFound] if there is none.
func (r *Registry[F]) Get(name string) (*F, error) {
	file, ok := r.entries[name]
	if !ok {
		return nil, blocksim.ErrNotFound.WithMessage(
			fmt.Sprintf("file %q not found", name))
	}
	return file, nil
}

// Contains tells whether `name` is registered.
func (r *Registry[F]) Contains(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Remove unregisters `name`. Releasing the blocks the entry owns is the
// caller's job and must happen before the entry is removed.
func (r *Registry[F]) Remove(name string) error {
	if _, ok := r.entries[name]; !ok {
		return blocksim.ErrNotFound.WithMessage(
			fmt.Sprintf("file %q not found", name))
	}
	delete(r.entries, name)
	return nil
}

// Len returns the number of live files.
func (r *Registry[F]) Len() int {
	return len(r.entries)
}

// ForEach calls `visit` once per live file. Iteration order is unspecified.
func (r *Registry[F]) ForEach(visit func(name string, file *F)) {
	for name, file := range r.entries {
		visit(name, file)
	}
}
