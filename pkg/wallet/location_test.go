package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocationBareName(t *testing.T) {
	loc := NewLocation("/data/wallets", "savings")

	assert.Equal(t, "savings", loc.Name())
	assert.Equal(t, filepath.Join("/data/wallets", "savings"), loc.Path())
}

func TestNewLocationAbsolutePathBypassesWalletDir(t *testing.T) {
	loc := NewLocation("/data/wallets", "/mnt/cold/savings")

	assert.Equal(t, "/mnt/cold/savings", loc.Name())
	assert.Equal(t, "/mnt/cold/savings", loc.Path())
}

func TestNewLocationNormalizesSpelling(t *testing.T) {
	// Different spellings of the same identifier must resolve to the same
	// canonical path, or duplicate detection would miss them.
	a := NewLocation("/data/wallets", "savings")
	b := NewLocation("/data/wallets", "./savings")
	c := NewLocation("/data/wallets", "sub/../savings")

	assert.Equal(t, a.Path(), b.Path())
	assert.Equal(t, a.Path(), c.Path())
}

func TestResolveWalletDir(t *testing.T) {
	dir := t.TempDir()

	resolved, err := ResolveWalletDir(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(resolved))
}

func TestResolveWalletDirRejectsRelative(t *testing.T) {
	_, err := ResolveWalletDir("wallets")

	var perr *PathResolutionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "wallets", perr.Path)
	assert.Contains(t, perr.Error(), "relative")
}

func TestResolveWalletDirRejectsMissing(t *testing.T) {
	_, err := ResolveWalletDir(filepath.Join(t.TempDir(), "nope"))

	var perr *PathResolutionError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "does not exist")
}

func TestResolveWalletDirRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "wallet.dat")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	_, err := ResolveWalletDir(file)

	var perr *PathResolutionError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "not a directory")
}

func TestResolveWalletDirFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(real, 0755))
	link := filepath.Join(dir, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	fromLink, err := ResolveWalletDir(link)
	require.NoError(t, err)
	fromReal, err := ResolveWalletDir(real)
	require.NoError(t, err)

	assert.Equal(t, fromReal, fromLink)
}

func TestDefaultWalletDir(t *testing.T) {
	dataDir := t.TempDir()

	// Without a wallets/ subdirectory, wallets live in the data dir.
	assert.Equal(t, dataDir, DefaultWalletDir(dataDir))

	require.NoError(t, os.Mkdir(filepath.Join(dataDir, "wallets"), 0755))
	assert.Equal(t, filepath.Join(dataDir, "wallets"), DefaultWalletDir(dataDir))
}

func TestDefaultWalletDirIgnoresWalletsFile(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "wallets"), []byte("x"), 0600))

	assert.Equal(t, dataDir, DefaultWalletDir(dataDir))
}

func TestLocationExistence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flat"), []byte("x"), 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "tree"), 0755))

	flat := NewLocation(dir, "flat")
	tree := NewLocation(dir, "tree")
	missing := NewLocation(dir, "missing")

	assert.True(t, flat.Exists())
	assert.True(t, flat.IsFile())
	assert.True(t, tree.Exists())
	assert.False(t, tree.IsFile())
	assert.False(t, missing.Exists())
}
