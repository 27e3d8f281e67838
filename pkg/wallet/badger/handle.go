package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/codewer/blocknet/internal/logger"
	"github.com/codewer/blocknet/pkg/wallet"
)

// Keys live in a flat keyspace with a short prefix per record family.
var (
	keyBestHeight = []byte("meta:bestheight")
)

// Handle is a live badger-backed wallet. It implements wallet.Handle.
type Handle struct {
	engine *Engine
	loc    wallet.Location
	db     *badger.DB
	chain  wallet.Chain
	id     uuid.UUID

	mu     sync.Mutex
	closed bool
}

func newHandle(engine *Engine, loc wallet.Location, db *badger.DB, chain wallet.Chain) *Handle {
	return &Handle{
		engine: engine,
		loc:    loc,
		db:     db,
		chain:  chain,
		id:     uuid.New(),
	}
}

// Name returns the identifier the wallet was configured with.
func (h *Handle) Name() string { return h.loc.Name() }

// Path returns the wallet's canonical path.
func (h *Handle) Path() string { return h.loc.Path() }

// ID returns the runtime instance ID assigned at open.
func (h *Handle) ID() uuid.UUID { return h.id }

// PostInit records where the chain tip was when the wallet came online.
// The stored height is where a future rescan would have to start.
func (h *Handle) PostInit(ctx context.Context) error {
	height, err := h.chain.Height(ctx)
	if err != nil {
		return fmt.Errorf("failed to query chain height: %w", err)
	}

	if err := h.SetBestHeight(height); err != nil {
		return err
	}

	logger.Debug("Wallet attached to chain", "wallet", h.Name(), "height", height)
	return nil
}

// SetBestHeight persists the wallet's best known block height.
func (h *Handle) SetBestHeight(height int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("wallet %q is closed", h.Name())
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(height))

	err := h.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyBestHeight, buf[:])
	})
	if err != nil {
		return fmt.Errorf("failed to store best height: %w", err)
	}
	return nil
}

// BestHeight returns the wallet's best known block height, or zero when
// the wallet has never been attached.
func (h *Handle) BestHeight() (int64, error) {
	var height int64
	err := h.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyBestHeight)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("malformed best height record (%d bytes)", len(val))
			}
			height = int64(binary.BigEndian.Uint64(val))
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read best height: %w", err)
	}
	return height, nil
}

// Flush forces buffered writes to disk. A shutdown flush is terminal:
// the handle accepts no writes afterwards.
func (h *Handle) Flush(ctx context.Context, shutdown bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		if shutdown {
			return nil
		}
		return fmt.Errorf("wallet %q is closed", h.Name())
	}

	if err := h.db.Sync(); err != nil {
		return fmt.Errorf("failed to sync wallet database: %w", err)
	}

	if shutdown {
		h.closed = true
	}
	return nil
}

// Release closes the database and drops the wallet from the maintenance
// set. Only valid after a terminal Flush.
func (h *Handle) Release() error {
	h.mu.Lock()
	if !h.closed {
		h.mu.Unlock()
		return fmt.Errorf("wallet %q released without shutdown flush", h.Name())
	}
	h.mu.Unlock()

	h.engine.forget(h.loc.Path())

	if err := h.db.Close(); err != nil {
		return fmt.Errorf("failed to close wallet database: %w", err)
	}
	return nil
}
