package wallet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/codewer/blocknet/internal/logger"
)

// SentinelFile marks a data dir that has completed at least one run.
// Its mere presence (not content) is the "already migrated" signal: the
// node writes it on every run, so a missing sentinel means first run.
const SentinelFile = "peers.dat"

// Migrator copies a legacy single-file wallet into the current layout on
// the node's first run. It is a best-effort compatibility bridge: the
// copied file is not validated here, verification happens in the normal
// pre-load pass afterwards.
type Migrator struct {
	// DataDir is the current data directory.
	DataDir string

	// WalletDir is the resolved wallet directory.
	WalletDir string

	// LegacyDataDir is the data directory of the previous client
	// generation.
	LegacyDataDir string
}

// Run performs the migration check and, when applicable, the copy.
//
// The copy happens only when all of the following hold:
//   - the sentinel file is absent (first run),
//   - neither current-format default path already has a wallet file,
//   - the legacy wallet file exists.
//
// The destination is created exclusively; an existing destination fails
// the copy rather than being overwritten.
func (m *Migrator) Run() (MigrationOutcome, error) {
	sentinel := filepath.Join(m.DataDir, SentinelFile)
	if _, err := os.Stat(sentinel); err == nil {
		return MigrationNotFirstRun, nil
	}

	rootDefault := filepath.Join(m.DataDir, WalletDataFile)
	walletDirDefault := filepath.Join(m.WalletDir, WalletDataFile)
	legacy := filepath.Join(m.LegacyDataDir, WalletDataFile)

	if fileExists(rootDefault) || fileExists(walletDirDefault) {
		return MigrationDestinationExists, nil
	}
	if !fileExists(legacy) {
		return MigrationSourceMissing, nil
	}

	logger.Info("Copying legacy wallet file", "source", legacy, "destination", walletDirDefault)

	if err := copyFileExclusive(legacy, walletDirDefault); err != nil {
		return MigrationFailed, &MigrationError{Source: legacy, Destination: walletDirDefault, Err: err}
	}

	return MigrationCopied, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// copyFileExclusive copies src to dst, failing if dst already exists.
func copyFileExclusive(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("destination already exists: %w", err)
		}
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy failed: %w", err)
	}

	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("sync failed: %w", err)
	}

	return out.Close()
}
