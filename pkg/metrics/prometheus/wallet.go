// Package prometheus provides the Prometheus-backed implementations of
// the metrics interfaces consumed by the wallet subsystem.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/codewer/blocknet/pkg/metrics"
)

// walletMetrics is the Prometheus implementation of the wallet loader and
// maintenance metrics.
type walletMetrics struct {
	walletsLoaded      prometheus.Gauge
	compactionDuration prometheus.Histogram
	compactionFailures prometheus.Counter
}

// NewWalletMetrics creates a Prometheus-backed wallet metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called). All
// methods are nil-receiver safe.
func NewWalletMetrics() *walletMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &walletMetrics{
		walletsLoaded: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "blocknet_wallets_loaded",
				Help: "Number of wallets currently loaded in the registry",
			},
		),
		compactionDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blocknet_wallet_compaction_duration_seconds",
				Help:    "Duration of periodic wallet compaction passes",
				Buckets: prometheus.DefBuckets,
			},
		),
		compactionFailures: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "blocknet_wallet_compaction_failures_total",
				Help: "Total number of failed wallet compaction passes",
			},
		),
	}
}

// SetWalletsLoaded records the number of wallets in the registry.
func (m *walletMetrics) SetWalletsLoaded(n int) {
	if m == nil {
		return
	}
	m.walletsLoaded.Set(float64(n))
}

// ObserveCompaction records the duration and outcome of one maintenance
// compaction pass.
func (m *walletMetrics) ObserveCompaction(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.compactionDuration.Observe(d.Seconds())
	if err != nil {
		m.compactionFailures.Inc()
	}
}
