package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/codewer/blocknet/internal/logger"
	"github.com/codewer/blocknet/pkg/wallet"
)

// Legacy single-file wallets are Berkeley DB btree files. The magic
// number sits at byte offset 12, in either byte order depending on the
// writing host.
const (
	legacyMagicOffset = 12
	legacyMagic       = 0x00053162
)

// verifyLegacyFile checks that a legacy wallet file is readable and
// carries the expected header. Salvage cannot help a legacy file, so the
// check is the same either way.
func verifyLegacyFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open legacy wallet file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat legacy wallet file: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("legacy wallet file is empty")
	}

	var header [16]byte
	if _, err := f.ReadAt(header[:], 0); err != nil {
		return "", fmt.Errorf("failed to read legacy wallet header: %w", err)
	}

	le := binary.LittleEndian.Uint32(header[legacyMagicOffset:])
	be := binary.BigEndian.Uint32(header[legacyMagicOffset:])
	if le != legacyMagic && be != legacyMagic {
		return "", fmt.Errorf("legacy wallet file has an unrecognized header")
	}

	return "legacy wallet file is read-only; create a new wallet to receive funds", nil
}

// legacyHandle is a read-only handle over a legacy single-file wallet.
// It satisfies wallet.Handle so the registry can manage it like any
// other wallet, but it accepts no writes and flushes are no-ops.
type legacyHandle struct {
	loc wallet.Location
	f   *os.File
	id  uuid.UUID

	mu     sync.Mutex
	closed bool
}

func openLegacy(loc wallet.Location) (wallet.Handle, error) {
	if warning, err := verifyLegacyFile(loc.Path()); err != nil {
		return nil, err
	} else if warning != "" {
		logger.Warn("Opening legacy wallet", "wallet", loc.Name(), "warning", warning)
	}

	f, err := os.Open(loc.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy wallet file: %w", err)
	}

	return &legacyHandle{loc: loc, f: f, id: uuid.New()}, nil
}

func (h *legacyHandle) Name() string  { return h.loc.Name() }
func (h *legacyHandle) Path() string  { return h.loc.Path() }
func (h *legacyHandle) ID() uuid.UUID { return h.id }

func (h *legacyHandle) PostInit(ctx context.Context) error {
	// Nothing to persist in a read-only wallet.
	logger.Debug("Legacy wallet attached", "wallet", h.Name())
	return nil
}

func (h *legacyHandle) Flush(ctx context.Context, shutdown bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if shutdown {
		h.closed = true
	}
	return nil
}

func (h *legacyHandle) Release() error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if !closed {
		return fmt.Errorf("wallet %q released without shutdown flush", h.Name())
	}
	return h.f.Close()
}
