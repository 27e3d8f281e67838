package wallet

import (
	"context"

	"github.com/codewer/blocknet/internal/logger"
	"github.com/codewer/blocknet/internal/telemetry"
)

// VerifyLocations runs the pre-load verification batch over the given
// identifiers, resolved against walletDir.
//
// The batch is atomic and fails fast: a duplicate identifier or an engine
// verification error aborts immediately and no wallet from the batch may
// be loaded. Partially-admitted wallets under a shared registry are worse
// than an all-or-nothing boot failure. Engine warnings are logged and do
// not fail the batch.
//
// On success the resolved locations are returned in configuration order.
func VerifyLocations(ctx context.Context, engine Engine, walletDir string, names []string, salvage bool) ([]Location, error) {
	ctx, end := telemetry.StartSpan(ctx, "wallet.verify",
		telemetry.String(telemetry.AttrWalletDir, walletDir),
		telemetry.Int(telemetry.AttrCount, len(names)),
		telemetry.Bool(telemetry.AttrSalvage, salvage),
	)
	var err error
	defer func() { end(err) }()

	// Track each canonical path to detect identifiers naming the same
	// wallet in different spellings. Only the first collision is reported;
	// the batch is already dead at that point.
	seen := make(map[string]struct{}, len(names))
	locations := make([]Location, 0, len(names))

	for _, name := range names {
		loc := NewLocation(walletDir, name)
		if _, dup := seen[loc.Path()]; dup {
			err = &DuplicateWalletError{Name: name, Path: loc.Path()}
			return nil, err
		}
		seen[loc.Path()] = struct{}{}
		locations = append(locations, loc)
	}

	for _, loc := range locations {
		logger.Debug("Verifying wallet", "wallet", loc.Name(), "path", loc.Path(), "salvage", salvage)

		warning, verr := engine.Verify(ctx, loc, salvage)
		if warning != "" {
			logger.Warn("Wallet verification warning", "wallet", loc.Name(), "warning", warning)
		}
		if verr != nil {
			err = &VerificationError{Name: loc.Name(), Err: verr}
			return nil, err
		}
	}

	return locations, nil
}
