package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codewer/blocknet/internal/bytesize"
)

// DefaultMaintenanceInterval is the spacing between periodic wallet
// flush/compaction passes.
const DefaultMaintenanceInterval = 500 * time.Millisecond

// DefaultShutdownTimeout bounds the graceful shutdown drain.
const DefaultShutdownTimeout = 30 * time.Second

// DefaultMetricsPort is the Prometheus metrics HTTP port.
const DefaultMetricsPort = 9690

// DefaultDBCache is the per-wallet database block cache budget.
const DefaultDBCache = 256 * bytesize.MiB

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values (0, "", false, nil) are replaced with defaults; explicit
// values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	if cfg.LegacyDataDir == "" {
		cfg.LegacyDataDir = DefaultLegacyDataDir()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Wallet.MaintenanceInterval == 0 {
		cfg.Wallet.MaintenanceInterval = DefaultMaintenanceInterval
	}
	if cfg.Wallet.DBCache == 0 {
		cfg.Wallet.DBCache = DefaultDBCache
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
	}
}

// applyMetricsDefaults sets Prometheus metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = DefaultMetricsPort
	}
}

// GetDefaultConfig returns a fully-populated default configuration.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// DefaultDataDir returns the default node data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".blocknet"
	}
	return filepath.Join(home, ".blocknet")
}

// DefaultLegacyDataDir returns the data directory of the previous client
// generation, used only by the first-run wallet migration.
func DefaultLegacyDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".blocknetdx"
	}
	return filepath.Join(home, ".blocknetdx")
}
