package config

import "fmt"

// HighTxFeePerKB is the per-kilobyte fee threshold, in satoshis, above
// which a configured transaction fee draws a warning at startup.
const HighTxFeePerKB = int64(10_000_000)

// WalletParams captures the wallet-related startup parameters exactly as
// the operator supplied them. The pointer fields distinguish "not set"
// (nil) from an explicit value, which lets resolution fill in implied
// values without overriding operator intent.
type WalletParams struct {
	// Disabled skips wallet loading entirely.
	Disabled bool

	// Wallets lists wallet identifiers to load.
	Wallets []string

	// WalletDir is the operator-supplied wallet directory, empty when
	// unset.
	WalletDir string

	// Salvage attempts recovery of wallet data during verification.
	Salvage bool

	// ZapTransactions deletes all wallet transactions on load.
	ZapTransactions bool

	// UpgradeWallet upgrades the wallet to the latest format on load.
	UpgradeWallet bool

	// InsecurePerms relaxes filesystem permissions on created files.
	InsecurePerms bool

	// BlocksOnly makes the node reject loose transactions.
	BlocksOnly bool

	// Pruned indicates the node runs with a pruned block store.
	Pruned bool

	// Rescan forces a blockchain rescan on load. Nil when the operator
	// did not set it.
	Rescan *bool

	// Broadcast controls broadcasting of wallet transactions. Nil when
	// the operator did not set it.
	Broadcast *bool

	// PersistMempool controls persisting the mempool across restarts.
	// Nil when the operator did not set it.
	PersistMempool *bool

	// PayTxFee is the configured transaction fee in satoshis per
	// kilobyte, zero when unset.
	PayTxFee int64
}

// ResolvedWalletParams is the effective wallet configuration after all
// parameter interactions have been applied. Every field holds a concrete
// value; there is no "unset" state left.
type ResolvedWalletParams struct {
	Disabled        bool
	Wallets         []string
	WalletDir       string
	Salvage         bool
	ZapTransactions bool
	UpgradeWallet   bool
	Rescan          bool
	Broadcast       bool
	PersistMempool  bool

	// Warnings collects non-fatal findings, such as a very high
	// transaction fee, for the caller to log.
	Warnings []string
}

// Implication records one parameter value that resolution derived from
// another parameter rather than from the operator.
type Implication struct {
	// Flag is the parameter whose value was derived.
	Flag string

	// Value is the derived value.
	Value bool

	// Cause is the parameter that forced the derivation.
	Cause string
}

func (i Implication) String() string {
	return fmt.Sprintf("parameter interaction: -%s -> setting -%s=%v", i.Cause, i.Flag, i.Value)
}

// MultiWalletError reports a per-boot flag that only supports a single
// wallet being combined with multiple wallets.
type MultiWalletError struct {
	// Flag is the offending parameter.
	Flag string
}

func (e *MultiWalletError) Error() string {
	return fmt.Sprintf("-%s is only allowed with a single wallet file", e.Flag)
}

// ConfigConflictError reports two parameters that cannot be combined.
type ConfigConflictError struct {
	// Flag is the offending parameter.
	Flag string

	// Reason explains the conflict.
	Reason string
}

func (e *ConfigConflictError) Error() string {
	return fmt.Sprintf("-%s %s", e.Flag, e.Reason)
}
