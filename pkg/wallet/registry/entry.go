// Package registry holds the process-wide table of opened wallets and the
// per-wallet lifecycle state machine. The registry is constructed at boot
// and passed by reference to every component that needs wallet access; it
// owns each handle from admission until removal.
package registry

import (
	"context"
	"fmt"
	"sync"
)

// Handle is the borrowed view of an opened wallet the registry manages.
// It is satisfied by the engine handle types in pkg/wallet.
type Handle interface {
	Name() string
	Path() string
	PostInit(ctx context.Context) error
	Flush(ctx context.Context, shutdown bool) error
	Release() error
}

// State is a wallet's position in its lifecycle.
//
// The only legal order is Loaded → Active ⇄ Flushing → Stopped → Unloaded.
// Verification happens before a handle exists, so the registry never sees
// an unverified wallet.
type State int

const (
	// StateLoaded means the engine has opened the wallet but its
	// post-admission hook has not run yet.
	StateLoaded State = iota

	// StateActive means the wallet is serving traffic and eligible for
	// periodic maintenance.
	StateActive

	// StateFlushing means a non-terminal flush is in progress; the wallet
	// returns to Active when it completes.
	StateFlushing

	// StateStopped means the terminal shutdown flush has completed. No
	// further writes are accepted.
	StateStopped

	// StateUnloaded is terminal: the handle has been removed from the
	// registry and released.
	StateUnloaded
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateActive:
		return "active"
	case StateFlushing:
		return "flushing"
	case StateStopped:
		return "stopped"
	case StateUnloaded:
		return "unloaded"
	default:
		return "unknown"
	}
}

// Entry wraps an admitted handle with its lifecycle state.
type Entry struct {
	mu     sync.Mutex
	handle Handle
	state  State
}

// Handle returns the wrapped handle. Callers borrow it for the duration of
// a call and must not retain it.
func (e *Entry) Handle() Handle {
	return e.handle
}

// State returns the entry's current lifecycle state.
func (e *Entry) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// activate runs the post-admission hook and moves the entry to Active.
func (e *Entry) activate(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateLoaded {
		return fmt.Errorf("wallet %q: cannot activate from state %s", e.handle.Name(), e.state)
	}

	if err := e.handle.PostInit(ctx); err != nil {
		return fmt.Errorf("wallet %q: post-init failed: %w", e.handle.Name(), err)
	}

	e.state = StateActive
	return nil
}

// flush performs a non-terminal flush. The entry mutex makes flushes on
// one wallet mutually exclusive; normal traffic is serialized inside the
// engine, not here.
func (e *Entry) flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return nil // nothing to flush before activation or after stop
	}

	e.state = StateFlushing
	err := e.handle.Flush(ctx, false)
	e.state = StateActive
	return err
}

// stop performs the terminal flush and moves the entry to Stopped.
func (e *Entry) stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateLoaded, StateActive:
		// fall through to the terminal flush
	case StateStopped:
		return nil
	default:
		return fmt.Errorf("wallet %q: cannot stop from state %s", e.handle.Name(), e.state)
	}

	if err := e.handle.Flush(ctx, true); err != nil {
		return fmt.Errorf("wallet %q: shutdown flush failed: %w", e.handle.Name(), err)
	}

	e.state = StateStopped
	return nil
}

// unload releases the handle. Only valid after stop: unloading a wallet
// the maintenance task could still touch is a use-after-release hazard.
func (e *Entry) unload() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateStopped {
		return fmt.Errorf("wallet %q: cannot unload from state %s", e.handle.Name(), e.state)
	}

	if err := e.handle.Release(); err != nil {
		return fmt.Errorf("wallet %q: release failed: %w", e.handle.Name(), err)
	}

	e.state = StateUnloaded
	return nil
}
