package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/codewer/blocknet/internal/logger"
	"github.com/codewer/blocknet/internal/telemetry"
	"github.com/codewer/blocknet/pkg/wallet/maintenance"
	"github.com/codewer/blocknet/pkg/wallet/registry"
)

// Metrics records loader-level observations. Implementations must be
// nil-receiver safe so a disabled metrics build costs nothing.
type Metrics interface {
	// SetWalletsLoaded records the number of wallets currently in the
	// registry.
	SetWalletsLoaded(n int)
}

// Options configures a Loader.
type Options struct {
	// WalletDir is the resolved wallet directory.
	WalletDir string

	// Wallets lists the wallet identifiers to load, in configuration
	// order.
	Wallets []string

	// Salvage enables recovery during the verification batch.
	Salvage bool

	// MaintenanceInterval is the spacing between background maintenance
	// passes. Zero selects the default.
	MaintenanceInterval time.Duration

	// Metrics receives loader gauges. May be nil.
	Metrics Metrics

	// MaintenanceMetrics receives compaction observations. May be nil.
	MaintenanceMetrics maintenance.Metrics
}

// Loader drives the wallet boot and shutdown sequence: verify, load,
// start, and at shutdown stop and unload. It owns the registry and the
// maintenance scheduler; everything else is borrowed.
//
// The sequence is strictly ordered. Load admits nothing unless every
// wallet in the batch opens; Stop disarms maintenance before the terminal
// flush; Unload runs only after Stop.
type Loader struct {
	engine     Engine
	registry   *registry.Registry
	maintainer *maintenance.Maintainer
	scheduler  *maintenance.TickerScheduler

	walletDir string
	names     []string
	salvage   bool
	metrics   Metrics
}

// NewLoader creates a loader for the given engine and options.
func NewLoader(engine Engine, opts Options) *Loader {
	reg := registry.New()
	return &Loader{
		engine:     engine,
		registry:   reg,
		maintainer: maintenance.New(engine, reg, opts.MaintenanceInterval, opts.MaintenanceMetrics),
		scheduler:  maintenance.NewTickerScheduler(),
		walletDir:  opts.WalletDir,
		names:      opts.Wallets,
		salvage:    opts.Salvage,
		metrics:    opts.Metrics,
	}
}

// Registry exposes the wallet registry for RPC-facing lookups.
func (l *Loader) Registry() *registry.Registry {
	return l.registry
}

// Verify runs the pre-load verification batch without opening anything.
func (l *Loader) Verify(ctx context.Context) ([]Location, error) {
	return VerifyLocations(ctx, l.engine, l.walletDir, l.names, l.salvage)
}

// Load verifies and opens every configured wallet, admitting each to the
// registry. The batch is all-or-nothing: if any wallet fails to open,
// every wallet admitted so far is stopped and unloaded before the error
// is returned, leaving the registry empty.
func (l *Loader) Load(ctx context.Context, chain Chain) error {
	ctx, end := telemetry.StartSpan(ctx, "wallet.load",
		telemetry.Int(telemetry.AttrCount, len(l.names)),
	)
	var err error
	defer func() { end(err) }()

	var locations []Location
	locations, err = l.Verify(ctx)
	if err != nil {
		return err
	}

	for _, loc := range locations {
		logger.Info("Loading wallet", "wallet", loc.Name(), "path", loc.Path())

		var handle Handle
		handle, err = l.engine.Open(ctx, chain, loc)
		if err != nil {
			err = fmt.Errorf("failed to open wallet %q: %w", loc.Name(), err)
			l.rollback(ctx)
			return err
		}

		if aerr := l.registry.Admit(handle); aerr != nil {
			// Admission only fails on a duplicate path, which verification
			// already excluded; treat it as fatal all the same.
			if rerr := handle.Flush(ctx, true); rerr != nil {
				logger.Error("Wallet flush failed during rollback", "wallet", handle.Name(), "error", rerr)
			}
			if rerr := handle.Release(); rerr != nil {
				logger.Error("Wallet release failed during rollback", "wallet", handle.Name(), "error", rerr)
			}
			err = aerr
			l.rollback(ctx)
			return err
		}
	}

	if l.metrics != nil {
		l.metrics.SetWalletsLoaded(l.registry.Count())
	}
	logger.Info("Wallets loaded", "count", l.registry.Count())
	return nil
}

// rollback drains whatever the failed load batch already admitted.
func (l *Loader) rollback(ctx context.Context) {
	if l.registry.Count() == 0 {
		return
	}
	logger.Warn("Rolling back partially loaded wallet batch", "count", l.registry.Count())
	l.registry.StopAll(ctx)
	l.registry.UnloadAll()
}

// Start activates every loaded wallet and arms the maintenance task.
// Maintenance is armed only after every activation succeeded, so a
// half-started batch is never flushed in the background.
func (l *Loader) Start(ctx context.Context) error {
	if err := l.registry.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start wallets: %w", err)
	}
	l.maintainer.Arm(l.scheduler)
	return nil
}

// Flush performs a non-terminal flush of every active wallet.
func (l *Loader) Flush(ctx context.Context) {
	l.registry.FlushAll(ctx)
}

// Stop disarms the maintenance scheduler, waits for any in-flight pass to
// finish, then performs the terminal flush of every wallet. After Stop
// returns every wallet is Stopped and no background task touches them.
func (l *Loader) Stop(ctx context.Context) {
	logger.Info("Stopping wallets", "count", l.registry.Count())
	l.scheduler.Stop()
	l.registry.StopAll(ctx)
}

// Unload releases every stopped wallet and empties the registry. Must be
// called after Stop.
func (l *Loader) Unload() {
	l.registry.UnloadAll()
	if l.metrics != nil {
		l.metrics.SetWalletsLoaded(l.registry.Count())
	}
}
