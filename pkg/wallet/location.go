// Package wallet manages the lifecycle of the node's persisted wallets:
// identifier resolution, legacy migration, pre-load verification, and the
// boot/shutdown orchestration consumed by the blocknetd start sequence.
//
// The storage engine itself is abstracted behind the Engine interface; the
// default implementation lives in pkg/wallet/badger.
package wallet

import (
	"os"
	"path/filepath"
)

// WalletDataFile is the primary data file name inside a wallet directory,
// and the file name of a legacy single-file wallet.
const WalletDataFile = "wallet.dat"

// Location pairs a wallet identifier as the operator configured it with
// the canonical absolute path it resolves to.
//
// An identifier may be a bare name, a relative path, or an absolute path.
// Bare names and relative paths are resolved against the wallet directory.
// The canonical path is the identity key for duplicate detection: two
// identifiers naming the same files must compare equal here.
type Location struct {
	name string
	path string
}

// NewLocation resolves an identifier against the wallet directory.
// walletDir must already be canonical (see ResolveWalletDir).
func NewLocation(walletDir, name string) Location {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(walletDir, path)
	}
	return Location{name: name, path: filepath.Clean(path)}
}

// Name returns the identifier as configured.
func (l Location) Name() string { return l.name }

// Path returns the canonical absolute path.
func (l Location) Path() string { return l.path }

// Exists reports whether anything (file or directory) is present at the
// resolved path.
func (l Location) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// IsFile reports whether the resolved path is a regular file, the legacy
// single-file wallet layout.
func (l Location) IsFile() bool {
	info, err := os.Stat(l.path)
	return err == nil && info.Mode().IsRegular()
}

// ResolveWalletDir validates the configured wallet directory and returns
// its canonical form.
//
// The directory must be given as an absolute path, must exist, and must be
// a directory. Symlinks are resolved so that later duplicate checks compare
// real paths. Any failure aborts startup before a wallet is touched.
func ResolveWalletDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		return "", &PathResolutionError{Path: dir, Reason: "is a relative path"}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", &PathResolutionError{Path: dir, Reason: "does not exist"}
	}
	if !info.IsDir() {
		return "", &PathResolutionError{Path: dir, Reason: "is not a directory"}
	}

	canonical, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", &PathResolutionError{Path: dir, Reason: "could not be canonicalized"}
	}

	return canonical, nil
}

// DefaultWalletDir returns the wallet directory for a data dir:
// <datadir>/wallets if it exists as a directory, otherwise the data dir
// itself.
func DefaultWalletDir(dataDir string) string {
	candidate := filepath.Join(dataDir, "wallets")
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate
	}
	return dataDir
}
