package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/codewer/blocknet/internal/logger"
)

// Registry is the process-wide table of opened wallets, keyed by canonical
// path. Admission order is preserved so shutdown drains wallets
// deterministically.
//
// All methods are safe for concurrent use. List returns a point-in-time
// snapshot that stays valid while other goroutines mutate the registry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Admit adds an opened handle to the registry in the Loaded state.
// Returns an error for a nil handle or a path already admitted.
func (r *Registry) Admit(handle Handle) error {
	if handle == nil {
		return fmt.Errorf("cannot admit nil wallet handle")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := handle.Path()
	if _, exists := r.entries[path]; exists {
		return fmt.Errorf("wallet %q already admitted", handle.Name())
	}

	r.entries[path] = &Entry{handle: handle, state: StateLoaded}
	r.order = append(r.order, path)

	logger.Debug("Wallet admitted to registry", "wallet", handle.Name(), "path", path)
	return nil
}

// List returns a snapshot of all registered handles in admission order.
// The returned slice is a copy and safe to iterate while the registry
// changes; the handles themselves are borrowed, not owned.
func (r *Registry) List() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := make([]Handle, 0, len(r.order))
	for _, path := range r.order {
		if e, ok := r.entries[path]; ok {
			handles = append(handles, e.handle)
		}
	}
	return handles
}

// Count returns the number of registered wallets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Get returns the entry for a canonical path, or nil.
func (r *Registry) Get(path string) *Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[path]
}

// Remove releases a stopped handle and drops it from the registry.
// Removing a wallet that has not been stopped is an error.
func (r *Registry) Remove(handle Handle) error {
	if handle == nil {
		return fmt.Errorf("cannot remove nil wallet handle")
	}

	path := handle.Path()

	r.mu.Lock()
	entry, exists := r.entries[path]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("wallet %q not found in registry", handle.Name())
	}

	if err := entry.unload(); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.entries, path)
	for i, p := range r.order {
		if p == path {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	logger.Debug("Wallet removed from registry", "wallet", handle.Name())
	return nil
}

// StartAll runs the post-admission hook of every Loaded wallet, moving it
// to Active. Called once after the whole load batch has been admitted.
func (r *Registry) StartAll(ctx context.Context) error {
	for _, e := range r.snapshot() {
		if err := e.activate(ctx); err != nil {
			return err
		}
	}
	return nil
}

// FlushAll performs a non-terminal flush of every Active wallet.
// Flush never changes registry membership.
func (r *Registry) FlushAll(ctx context.Context) {
	for _, e := range r.snapshot() {
		if err := e.flush(ctx); err != nil {
			logger.Error("Wallet flush failed", "wallet", e.handle.Name(), "error", err)
		}
	}
}

// StopAll performs the terminal shutdown flush of every wallet. Every
// Stop must complete before any Unload begins; callers sequence StopAll
// strictly before UnloadAll.
func (r *Registry) StopAll(ctx context.Context) {
	for _, e := range r.snapshot() {
		if err := e.stop(ctx); err != nil {
			logger.Error("Wallet stop failed", "wallet", e.handle.Name(), "error", err)
		}
	}
}

// UnloadAll removes and releases every stopped wallet, in reverse
// admission order.
func (r *Registry) UnloadAll() {
	entries := r.snapshot()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if err := r.Remove(e.handle); err != nil {
			logger.Error("Wallet unload failed", "wallet", e.handle.Name(), "error", err)
		}
	}
}

// snapshot copies the entries in admission order under the read lock.
func (r *Registry) snapshot() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*Entry, 0, len(r.order))
	for _, path := range r.order {
		if e, ok := r.entries[path]; ok {
			entries = append(entries, e)
		}
	}
	return entries
}
