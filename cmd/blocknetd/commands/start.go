package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codewer/blocknet/internal/logger"
	"github.com/codewer/blocknet/internal/telemetry"
	"github.com/codewer/blocknet/pkg/chain"
	"github.com/codewer/blocknet/pkg/config"
	"github.com/codewer/blocknet/pkg/metrics"
	"github.com/codewer/blocknet/pkg/metrics/prometheus"
	"github.com/codewer/blocknet/pkg/wallet"
	walletbadger "github.com/codewer/blocknet/pkg/wallet/badger"
)

var (
	foreground bool
	pidFile    string
	logFile    string

	// Wallet startup flags. The boolean soft-settable flags (rescan,
	// walletbroadcast, persistmempool) are folded into WalletParams only
	// when the operator actually passed them, so parameter resolution can
	// tell "unset" from "explicitly false".
	flagWallets        []string
	flagWalletDir      string
	flagDisableWallet  bool
	flagSalvage        bool
	flagZapTxes        bool
	flagUpgradeWallet  bool
	flagInsecurePerms  bool
	flagBlocksOnly     bool
	flagPruned         bool
	flagRescan         bool
	flagBroadcast      bool
	flagPersistMempool bool
	flagPayTxFee       int64
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Blocknet node",
	Long: `Start the Blocknet node with the specified configuration.

By default, the node runs in the background (daemon mode). Use
--foreground to run in the foreground for debugging or when managed by a
process supervisor.

Examples:
  # Start in background (default)
  blocknetd start

  # Start in foreground with two wallets
  blocknetd start --foreground --wallet default --wallet savings

  # Recover a damaged wallet
  blocknetd start --foreground --wallet default --salvagewallet

  # Start with environment variable overrides
  BLOCKNET_LOGGING_LEVEL=DEBUG blocknetd start --foreground`,
}

func init() {
	startCmd.RunE = runStart
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/blocknet/blocknetd.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/blocknet/blocknetd.log)")

	startCmd.Flags().StringArrayVar(&flagWallets, "wallet", nil, "Wallet to load (name, relative path, or absolute path; repeatable)")
	startCmd.Flags().StringVar(&flagWalletDir, "walletdir", "", "Directory holding wallets (must be an absolute path to an existing directory)")
	startCmd.Flags().BoolVar(&flagDisableWallet, "disablewallet", false, "Disable wallet functionality")
	startCmd.Flags().BoolVar(&flagSalvage, "salvagewallet", false, "Attempt to recover wallet data on startup (single wallet only)")
	startCmd.Flags().BoolVar(&flagZapTxes, "zapwallettxes", false, "Delete all wallet transactions on startup (single wallet only)")
	startCmd.Flags().BoolVar(&flagUpgradeWallet, "upgradewallet", false, "Upgrade wallet to latest format on startup (single wallet only)")
	startCmd.Flags().BoolVar(&flagInsecurePerms, "insecureperms", false, "Create files with relaxed permissions (incompatible with wallets)")
	startCmd.Flags().BoolVar(&flagBlocksOnly, "blocksonly", false, "Reject loose transactions from the network")
	startCmd.Flags().BoolVar(&flagPruned, "pruned", false, "Run with a pruned block store")
	startCmd.Flags().BoolVar(&flagRescan, "rescan", false, "Rescan the blockchain for wallet transactions on startup")
	startCmd.Flags().BoolVar(&flagBroadcast, "walletbroadcast", true, "Broadcast wallet transactions")
	startCmd.Flags().BoolVar(&flagPersistMempool, "persistmempool", true, "Persist the mempool across restarts")
	startCmd.Flags().Int64Var(&flagPayTxFee, "paytxfee", 0, "Transaction fee in satoshis per kilobyte")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "blocknetd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "blocknetd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("Blocknet node starting", "version", Version)
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer = metrics.NewServer(cfg.Metrics.Port)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	} else {
		logger.Info("Metrics collection disabled")
	}

	params := walletParamsFromFlags(cmd, cfg)
	resolved, implications, err := config.ResolveWalletParams(params)
	if err != nil {
		return err
	}
	for _, imp := range implications {
		logger.Info(imp.String())
	}
	for _, warning := range resolved.Warnings {
		logger.Warn(warning)
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	var loader *wallet.Loader
	if resolved.Disabled {
		logger.Info("Wallet functionality disabled")
	} else {
		loader, err = setupWallets(ctx, cfg, resolved)
		if err != nil {
			return err
		}
	}

	// The sentinel's presence marks a completed first run; the legacy
	// migration keys off it.
	sentinel := filepath.Join(cfg.DataDir, wallet.SentinelFile)
	if _, err := os.Stat(sentinel); os.IsNotExist(err) {
		if werr := os.WriteFile(sentinel, nil, 0600); werr != nil {
			logger.Warn("Failed to write first-run sentinel", "path", sentinel, "error", werr)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("Node is running. Press Ctrl+C to stop.")
	<-sigChan
	signal.Stop(sigChan)
	logger.Info("Shutdown signal received, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if loader != nil {
		loader.Stop(shutdownCtx)
		loader.Unload()
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown error", "error", err)
		}
	}

	logger.Info("Node stopped gracefully")
	return nil
}

// walletParamsFromFlags merges the config file wallet settings with the
// CLI flags. Flags win. The tri-state parameters are only captured when
// the operator actually passed the flag.
func walletParamsFromFlags(cmd *cobra.Command, cfg *config.Config) config.WalletParams {
	params := config.WalletParams{
		Disabled:        cfg.Wallet.Disabled || flagDisableWallet,
		Wallets:         cfg.Wallet.Wallets,
		WalletDir:       cfg.Wallet.Dir,
		Salvage:         flagSalvage,
		ZapTransactions: flagZapTxes,
		UpgradeWallet:   flagUpgradeWallet,
		InsecurePerms:   flagInsecurePerms,
		BlocksOnly:      flagBlocksOnly,
		Pruned:          flagPruned,
		PayTxFee:        flagPayTxFee,
	}

	if len(flagWallets) > 0 {
		params.Wallets = flagWallets
	}
	if flagWalletDir != "" {
		params.WalletDir = flagWalletDir
	}

	if cmd.Flags().Changed("rescan") {
		v := flagRescan
		params.Rescan = &v
	}
	if cmd.Flags().Changed("walletbroadcast") {
		v := flagBroadcast
		params.Broadcast = &v
	}
	if cmd.Flags().Changed("persistmempool") {
		v := flagPersistMempool
		params.PersistMempool = &v
	}

	return params
}

// setupWallets resolves the wallet directory, runs the legacy migration,
// and brings every configured wallet through verification, load, and
// activation. The returned loader is running; the caller owns its
// shutdown.
func setupWallets(ctx context.Context, cfg *config.Config, resolved config.ResolvedWalletParams) (*wallet.Loader, error) {
	walletDir := resolved.WalletDir
	if walletDir == "" {
		walletDir = wallet.DefaultWalletDir(cfg.DataDir)
	}
	walletDir, err := wallet.ResolveWalletDir(walletDir)
	if err != nil {
		return nil, err
	}
	logger.Info("Using wallet directory", "path", walletDir)

	migrator := &wallet.Migrator{
		DataDir:       cfg.DataDir,
		WalletDir:     walletDir,
		LegacyDataDir: cfg.LegacyDataDir,
	}
	outcome, err := migrator.Run()
	if err != nil {
		return nil, err
	}
	if outcome == wallet.MigrationCopied {
		logger.Info("Migrated legacy wallet", "from", cfg.LegacyDataDir)
	} else {
		logger.Debug("Legacy wallet migration skipped", "outcome", outcome.String())
	}

	wallets := resolved.Wallets
	if len(wallets) == 0 {
		wallets = []string{wallet.WalletDataFile}
	}

	if resolved.Rescan {
		logger.Info("Wallet rescan requested; wallets will resync from their recorded height")
	}

	engine := walletbadger.NewEngine(
		walletbadger.WithCacheSize(cfg.Wallet.DBCache.Int64()),
		walletbadger.WithSyncWrites(cfg.Wallet.SyncWrites),
	)

	walletMetrics := prometheus.NewWalletMetrics()
	loader := wallet.NewLoader(engine, wallet.Options{
		WalletDir:           walletDir,
		Wallets:             wallets,
		Salvage:             resolved.Salvage,
		MaintenanceInterval: cfg.Wallet.MaintenanceInterval,
		Metrics:             walletMetrics,
		MaintenanceMetrics:  walletMetrics,
	})

	tip := chain.NewTip(0)
	if err := loader.Load(ctx, tip); err != nil {
		return nil, err
	}
	if err := loader.Start(ctx); err != nil {
		loader.Stop(ctx)
		loader.Unload()
		return nil, err
	}

	return loader, nil
}
