// Package badger implements the wallet storage engine on BadgerDB.
//
// Each wallet is a badger database under its own directory. A legacy
// single-file wallet (wallet.dat copied from the previous client
// generation) is opened read-only; converting it is out of scope here.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/codewer/blocknet/internal/logger"
	"github.com/codewer/blocknet/pkg/wallet"
)

// Engine opens and maintains badger-backed wallets. It implements
// wallet.Engine.
//
// The engine tracks every database it has opened so the periodic
// maintenance pass can reach all of them with one call.
type Engine struct {
	mu   sync.Mutex
	open map[string]*badger.DB // keyed by canonical wallet path

	syncWrites bool
	cacheSize  int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSyncWrites makes every write hit disk before the call returns.
// Slower, but a crash loses nothing.
func WithSyncWrites(sync bool) Option {
	return func(e *Engine) {
		e.syncWrites = sync
	}
}

// WithCacheSize sets the per-wallet block cache budget in bytes. Zero
// keeps badger's default.
func WithCacheSize(bytes int64) Option {
	return func(e *Engine) {
		e.cacheSize = bytes
	}
}

// NewEngine creates a wallet storage engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		open: make(map[string]*badger.DB),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Verify checks the wallet at loc before it is opened.
//
// A missing wallet passes: it is created at open. A legacy single-file
// wallet is checked for a readable, non-empty payload. A directory wallet
// is opened read-only, which replays the write-ahead state and surfaces
// manifest or checksum corruption. With salvage set, a corrupt directory
// wallet is opened read-write instead so badger can truncate and rewrite
// what it must; whatever was dropped is reported as a warning.
func (e *Engine) Verify(ctx context.Context, loc wallet.Location, salvage bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !loc.Exists() {
		return "", nil
	}

	if loc.IsFile() {
		return verifyLegacyFile(loc.Path())
	}

	db, err := badger.Open(e.options(loc.Path()).WithReadOnly(true))
	if err == nil {
		return "", db.Close()
	}

	if !salvage {
		return "", fmt.Errorf("wallet database failed verification: %w", err)
	}

	logger.Warn("Wallet failed read-only verification, attempting salvage",
		"wallet", loc.Name(), "error", err)

	db, serr := badger.Open(e.options(loc.Path()))
	if serr != nil {
		return "", fmt.Errorf("wallet salvage failed: %w", serr)
	}
	if cerr := db.Close(); cerr != nil {
		return "", fmt.Errorf("wallet salvage failed: %w", cerr)
	}

	return fmt.Sprintf("wallet was salvaged; data written after the last sync may be lost (%v)", err), nil
}

// Open opens the wallet at loc and registers it for maintenance.
func (e *Engine) Open(ctx context.Context, chain wallet.Chain, loc wallet.Location) (wallet.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if loc.IsFile() {
		return openLegacy(loc)
	}

	db, err := badger.Open(e.options(loc.Path()))
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet database: %w", err)
	}

	e.mu.Lock()
	e.open[loc.Path()] = db
	e.mu.Unlock()

	return newHandle(e, loc, db, chain), nil
}

// Compact runs one bounded value-log garbage collection pass over every
// open wallet. Badger returns ErrNoRewrite when there is nothing to
// reclaim; that is the common case and not an error.
func (e *Engine) Compact(ctx context.Context) error {
	e.mu.Lock()
	dbs := make(map[string]*badger.DB, len(e.open))
	for path, db := range e.open {
		dbs[path] = db
	}
	e.mu.Unlock()

	var firstErr error
	for path, db := range dbs {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := db.RunValueLogGC(0.5)
		if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
			logger.Error("Wallet compaction failed", "path", path, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// forget drops a released database from the maintenance set.
func (e *Engine) forget(path string) {
	e.mu.Lock()
	delete(e.open, path)
	e.mu.Unlock()
}

// options builds the badger options for a wallet directory.
func (e *Engine) options(path string) badger.Options {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(e.syncWrites).
		WithLogger(badgerLogger{})
	if e.cacheSize > 0 {
		opts = opts.WithBlockCacheSize(e.cacheSize)
	}
	return opts
}

// badgerLogger routes badger's internal logging through the process
// logger at debug level; badger is chatty and its INFO is our DEBUG.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.Error(fmt.Sprintf("badger: "+format, args...))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Warn(fmt.Sprintf("badger: "+format, args...))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf("badger: "+format, args...))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf("badger: "+format, args...))
}
