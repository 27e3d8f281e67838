// Package chain exposes the node's best block height to components that
// attach to the chain, such as wallets recording their sync point.
package chain

import (
	"context"
	"sync/atomic"
)

// Tip tracks the node's best block height. It is safe for concurrent use.
type Tip struct {
	height atomic.Int64
}

// NewTip creates a tip tracker starting at the given height.
func NewTip(height int64) *Tip {
	t := &Tip{}
	t.height.Store(height)
	return t
}

// Height returns the current best block height.
func (t *Tip) Height(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return t.height.Load(), nil
}

// Advance moves the tip to a new height. Lower heights are ignored so a
// stale update cannot move the tip backwards.
func (t *Tip) Advance(height int64) {
	for {
		current := t.height.Load()
		if height <= current {
			return
		}
		if t.height.CompareAndSwap(current, height) {
			return
		}
	}
}
