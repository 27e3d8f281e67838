package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	resolved, implications, err := ResolveWalletParams(WalletParams{
		Wallets: []string{"default"},
	})
	require.NoError(t, err)

	assert.Empty(t, implications)
	assert.False(t, resolved.Disabled)
	assert.False(t, resolved.Rescan)
	assert.True(t, resolved.Broadcast)
	assert.True(t, resolved.PersistMempool)
	assert.Equal(t, []string{"default"}, resolved.Wallets)
}

func TestResolveDisabledIgnoresWallets(t *testing.T) {
	resolved, implications, err := ResolveWalletParams(WalletParams{
		Disabled: true,
		Wallets:  []string{"a", "b"},
		Salvage:  true, // ignored when disabled
	})
	require.NoError(t, err)

	assert.Empty(t, implications)
	assert.True(t, resolved.Disabled)
	assert.Empty(t, resolved.Wallets)
	require.Len(t, resolved.Warnings, 2)
	assert.Contains(t, resolved.Warnings[0], `"a"`)
	assert.Contains(t, resolved.Warnings[1], `"b"`)
}

func TestResolveBlocksOnlyImpliesNoBroadcast(t *testing.T) {
	resolved, implications, err := ResolveWalletParams(WalletParams{
		Wallets:    []string{"default"},
		BlocksOnly: true,
	})
	require.NoError(t, err)

	assert.False(t, resolved.Broadcast)
	require.Len(t, implications, 1)
	assert.Equal(t, Implication{Flag: "walletbroadcast", Value: false, Cause: "blocksonly"}, implications[0])
}

func TestResolveBlocksOnlyRespectsExplicitBroadcast(t *testing.T) {
	explicit := true
	resolved, implications, err := ResolveWalletParams(WalletParams{
		Wallets:    []string{"default"},
		BlocksOnly: true,
		Broadcast:  &explicit,
	})
	require.NoError(t, err)

	// The operator's explicit value wins; no implication is recorded.
	assert.True(t, resolved.Broadcast)
	assert.Empty(t, implications)
}

func TestResolveSalvageImpliesRescan(t *testing.T) {
	resolved, implications, err := ResolveWalletParams(WalletParams{
		Wallets: []string{"default"},
		Salvage: true,
	})
	require.NoError(t, err)

	assert.True(t, resolved.Rescan)
	require.Len(t, implications, 1)
	assert.Equal(t, Implication{Flag: "rescan", Value: true, Cause: "salvage"}, implications[0])
}

func TestResolveSalvageRespectsExplicitRescan(t *testing.T) {
	explicit := false
	resolved, implications, err := ResolveWalletParams(WalletParams{
		Wallets: []string{"default"},
		Salvage: true,
		Rescan:  &explicit,
	})
	require.NoError(t, err)

	assert.False(t, resolved.Rescan)
	assert.Empty(t, implications)
}

func TestResolveSalvageRejectsMultipleWallets(t *testing.T) {
	_, _, err := ResolveWalletParams(WalletParams{
		Wallets: []string{"a", "b"},
		Salvage: true,
	})

	var multiErr *MultiWalletError
	require.ErrorAs(t, err, &multiErr)
	assert.Equal(t, "salvage", multiErr.Flag)
	assert.Equal(t, "-salvage is only allowed with a single wallet file", err.Error())
}

func TestResolveZapImplications(t *testing.T) {
	resolved, implications, err := ResolveWalletParams(WalletParams{
		Wallets:         []string{"default"},
		ZapTransactions: true,
	})
	require.NoError(t, err)

	assert.True(t, resolved.Rescan)
	assert.False(t, resolved.PersistMempool)
	require.Len(t, implications, 2)
	assert.Equal(t, Implication{Flag: "rescan", Value: true, Cause: "zaptransactions"}, implications[0])
	assert.Equal(t, Implication{Flag: "persistmempool", Value: false, Cause: "zaptransactions"}, implications[1])
}

func TestResolveZapRejectsMultipleWallets(t *testing.T) {
	_, _, err := ResolveWalletParams(WalletParams{
		Wallets:         []string{"a", "b"},
		ZapTransactions: true,
	})

	var multiErr *MultiWalletError
	require.ErrorAs(t, err, &multiErr)
	assert.Equal(t, "zaptransactions", multiErr.Flag)
}

func TestResolveUpgradeRejectsMultipleWallets(t *testing.T) {
	_, _, err := ResolveWalletParams(WalletParams{
		Wallets:       []string{"a", "b"},
		UpgradeWallet: true,
	})

	var multiErr *MultiWalletError
	require.ErrorAs(t, err, &multiErr)
	assert.Equal(t, "upgradewallet", multiErr.Flag)
}

func TestResolveInsecurePermsConflictsWithWallet(t *testing.T) {
	_, _, err := ResolveWalletParams(WalletParams{
		Wallets:       []string{"default"},
		InsecurePerms: true,
	})

	var conflict *ConfigConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "insecureperms", conflict.Flag)
}

func TestResolveInsecurePermsAllowedWhenDisabled(t *testing.T) {
	_, _, err := ResolveWalletParams(WalletParams{
		Disabled:      true,
		InsecurePerms: true,
	})
	require.NoError(t, err)
}

func TestResolveRescanConflictsWithPruning(t *testing.T) {
	explicit := true
	_, _, err := ResolveWalletParams(WalletParams{
		Wallets: []string{"default"},
		Pruned:  true,
		Rescan:  &explicit,
	})

	var conflict *ConfigConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "rescan", conflict.Flag)
}

func TestResolveImpliedRescanConflictsWithPruning(t *testing.T) {
	// Salvage implies rescan; on a pruned node the implication must
	// still be rejected.
	_, _, err := ResolveWalletParams(WalletParams{
		Wallets: []string{"default"},
		Pruned:  true,
		Salvage: true,
	})

	var conflict *ConfigConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "rescan", conflict.Flag)
}

func TestResolveExplicitNoRescanAllowedWhenPruned(t *testing.T) {
	explicit := false
	resolved, _, err := ResolveWalletParams(WalletParams{
		Wallets: []string{"default"},
		Pruned:  true,
		Salvage: true,
		Rescan:  &explicit,
	})
	require.NoError(t, err)
	assert.False(t, resolved.Rescan)
}

func TestResolveHighFeeWarning(t *testing.T) {
	resolved, _, err := ResolveWalletParams(WalletParams{
		Wallets:  []string{"default"},
		PayTxFee: HighTxFeePerKB + 1,
	})
	require.NoError(t, err)

	require.Len(t, resolved.Warnings, 1)
	assert.Contains(t, resolved.Warnings[0], "-paytxfee is set very high")
}

func TestResolveFeeAtThresholdNoWarning(t *testing.T) {
	resolved, _, err := ResolveWalletParams(WalletParams{
		Wallets:  []string{"default"},
		PayTxFee: HighTxFeePerKB,
	})
	require.NoError(t, err)
	assert.Empty(t, resolved.Warnings)
}

func TestResolveIsPure(t *testing.T) {
	params := WalletParams{
		Wallets:    []string{"default"},
		BlocksOnly: true,
		Salvage:    true,
	}

	first, firstImpl, err := ResolveWalletParams(params)
	require.NoError(t, err)
	second, secondImpl, err := ResolveWalletParams(params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstImpl, secondImpl)
	assert.Nil(t, params.Rescan, "input must not be mutated")
	assert.Nil(t, params.Broadcast, "input must not be mutated")
}

func TestResolveErrorsAreDistinguishable(t *testing.T) {
	_, _, multiErr := ResolveWalletParams(WalletParams{
		Wallets: []string{"a", "b"},
		Salvage: true,
	})
	_, _, conflictErr := ResolveWalletParams(WalletParams{
		Wallets:       []string{"a"},
		InsecurePerms: true,
	})

	var multi *MultiWalletError
	var conflict *ConfigConflictError
	assert.True(t, errors.As(multiErr, &multi))
	assert.False(t, errors.As(multiErr, &conflict))
	assert.True(t, errors.As(conflictErr, &conflict))
	assert.False(t, errors.As(conflictErr, &multi))
}
