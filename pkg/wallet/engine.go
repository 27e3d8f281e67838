package wallet

import (
	"context"

	"github.com/google/uuid"
)

// Chain is the node's chain/sync interface a wallet attaches to. Wallet
// loading only needs enough of it to record where the chain tip was when a
// wallet came online; the full subscription surface belongs to the host.
type Chain interface {
	// Height returns the current best block height.
	Height(ctx context.Context) (int64, error)
}

// Engine is the storage engine contract the lifecycle manager drives.
// The engine owns record formats, corruption detection, and repair; this
// package only sequences its calls.
type Engine interface {
	// Verify checks the wallet at loc for existence and corruption before
	// it is opened. When salvage is set the engine may rewrite the wallet
	// to recover what it can. A non-empty warning is surfaced to the
	// operator without failing the batch; an error fails the whole batch.
	Verify(ctx context.Context, loc Location, salvage bool) (warning string, err error)

	// Open opens the wallet at loc and returns a live handle. The handle
	// is owned by the registry from admission until removal.
	Open(ctx context.Context, chain Chain, loc Location) (Handle, error)

	// Compact performs one bounded maintenance pass over every wallet the
	// engine has open: flushing buffered writes and reclaiming space. It
	// is invoked periodically from a single background task and never
	// concurrently with itself.
	Compact(ctx context.Context) error
}

// Handle is a live, opened wallet. The registry is the sole owner;
// other components borrow it only for the duration of a call.
type Handle interface {
	// Name returns the identifier the wallet was configured with.
	Name() string

	// Path returns the wallet's canonical path.
	Path() string

	// ID returns the runtime instance ID assigned at open.
	ID() uuid.UUID

	// PostInit runs once after the wallet is admitted to the registry,
	// before the maintenance scheduler is armed.
	PostInit(ctx context.Context) error

	// Flush writes buffered state to disk. A shutdown flush is terminal:
	// it must complete before the handle may be released, and no further
	// writes are accepted afterwards.
	Flush(ctx context.Context, shutdown bool) error

	// Release closes the wallet and frees its resources. Only valid after
	// a terminal Flush.
	Release() error
}
