package config

import "fmt"

// ResolveWalletParams applies the wallet parameter interaction rules and
// returns the effective configuration.
//
// Resolution is a pure pass: the input is never mutated, and calling it
// twice with the same input yields the same output. Derived values are
// reported as Implications so the caller can log how each one came
// about. A value the operator set explicitly is never overridden by an
// implied one.
//
// Rules are applied in a fixed order:
//  1. Wallet disabled: all other wallet parameters are ignored.
//  2. Blocks-only nodes imply -walletbroadcast=false.
//  3. -salvage requires a single wallet and implies -rescan=true.
//  4. -zaptransactions requires a single wallet and implies
//     -rescan=true and -persistmempool=false.
//  5. -upgradewallet requires a single wallet.
//  6. -insecureperms conflicts with enabled wallet functionality.
//  7. -rescan conflicts with a pruned block store.
//  8. A very high -paytxfee produces a warning.
func ResolveWalletParams(p WalletParams) (ResolvedWalletParams, []Implication, error) {
	resolved := ResolvedWalletParams{
		Disabled:        p.Disabled,
		WalletDir:       p.WalletDir,
		Salvage:         p.Salvage,
		ZapTransactions: p.ZapTransactions,
		UpgradeWallet:   p.UpgradeWallet,
	}

	if p.Disabled {
		// Wallets named alongside -disablewallet will never load;
		// surface that instead of silently dropping them.
		for _, name := range p.Wallets {
			resolved.Warnings = append(resolved.Warnings,
				fmt.Sprintf("ignoring wallet %q because wallet functionality is disabled", name))
		}
		resolved.Rescan = false
		resolved.Broadcast = false
		resolved.PersistMempool = valueOrDefault(p.PersistMempool, true)
		return resolved, nil, nil
	}

	resolved.Wallets = append([]string(nil), p.Wallets...)

	var implications []Implication

	rescan := p.Rescan
	broadcast := p.Broadcast
	persistMempool := p.PersistMempool

	if p.BlocksOnly && broadcast == nil {
		broadcast = boolPtr(false)
		implications = append(implications, Implication{
			Flag: "walletbroadcast", Value: false, Cause: "blocksonly",
		})
	}

	if p.Salvage {
		if len(p.Wallets) > 1 {
			return ResolvedWalletParams{}, nil, &MultiWalletError{Flag: "salvage"}
		}
		if rescan == nil {
			rescan = boolPtr(true)
			implications = append(implications, Implication{
				Flag: "rescan", Value: true, Cause: "salvage",
			})
		}
	}

	if p.ZapTransactions {
		if len(p.Wallets) > 1 {
			return ResolvedWalletParams{}, nil, &MultiWalletError{Flag: "zaptransactions"}
		}
		if rescan == nil {
			rescan = boolPtr(true)
			implications = append(implications, Implication{
				Flag: "rescan", Value: true, Cause: "zaptransactions",
			})
		}
		if persistMempool == nil {
			persistMempool = boolPtr(false)
			implications = append(implications, Implication{
				Flag: "persistmempool", Value: false, Cause: "zaptransactions",
			})
		}
	}

	if p.UpgradeWallet && len(p.Wallets) > 1 {
		return ResolvedWalletParams{}, nil, &MultiWalletError{Flag: "upgradewallet"}
	}

	if p.InsecurePerms {
		return ResolvedWalletParams{}, nil, &ConfigConflictError{
			Flag:   "insecureperms",
			Reason: "is not allowed in combination with enabled wallet functionality",
		}
	}

	if p.Pruned && rescan != nil && *rescan {
		return ResolvedWalletParams{}, nil, &ConfigConflictError{
			Flag:   "rescan",
			Reason: "is not possible with a pruned block store; you will need to reindex",
		}
	}

	if p.PayTxFee > HighTxFeePerKB {
		resolved.Warnings = append(resolved.Warnings,
			fmt.Sprintf("-paytxfee is set very high (%d sat/kB); this is the fee you will pay if you send a transaction", p.PayTxFee))
	}

	resolved.Rescan = valueOrDefault(rescan, false)
	resolved.Broadcast = valueOrDefault(broadcast, true)
	resolved.PersistMempool = valueOrDefault(persistMempool, true)

	return resolved, implications, nil
}

func boolPtr(v bool) *bool { return &v }

func valueOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
