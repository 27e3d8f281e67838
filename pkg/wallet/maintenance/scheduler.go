// Package maintenance arms the recurring background task that flushes and
// compacts the node's wallets. One task serves the whole process; it is
// armed once after the initial load batch succeeds and disarmed before the
// shutdown drain begins.
package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/codewer/blocknet/internal/logger"
)

// DefaultInterval is the default spacing between maintenance ticks.
const DefaultInterval = 500 * time.Millisecond

// Scheduler is the host's background scheduler contract: run task every
// interval until the scheduler is stopped.
type Scheduler interface {
	ScheduleEvery(task func(ctx context.Context), interval time.Duration)
}

// TickerScheduler is a single-goroutine Scheduler backed by a time.Ticker.
// Tasks scheduled on it never overlap: a tick that arrives while the task
// is still running is delivered after the task returns.
type TickerScheduler struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	stopCh  chan struct{}
	started bool
	stopped bool
}

// NewTickerScheduler creates an unstarted scheduler.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{
		stopCh: make(chan struct{}),
	}
}

// ScheduleEvery arms task on a recurring timer. May be called multiple
// times; each call runs its own timer goroutine.
func (s *TickerScheduler) ScheduleEvery(task func(ctx context.Context), interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				// Give the task its own context so a tick in flight when
				// Stop is called still runs to completion.
				task(context.Background())
			}
		}
	}()
}

// Stop disarms the scheduler and blocks until any in-flight tick has
// completed. After Stop returns no task will run again, which is what
// makes it safe to begin the shutdown drain.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
}

// Compactor is the engine-side maintenance hook: one bounded, host-wide
// compaction pass.
type Compactor interface {
	Compact(ctx context.Context) error
}

// Flusher flushes every active wallet without changing registry
// membership. Satisfied by the wallet registry.
type Flusher interface {
	FlushAll(ctx context.Context)
}

// Metrics records maintenance outcomes. May be nil.
type Metrics interface {
	ObserveCompaction(d time.Duration, err error)
}

// Maintainer builds and arms the periodic maintenance task.
type Maintainer struct {
	compactor Compactor
	flusher   Flusher
	interval  time.Duration
	metrics   Metrics
}

// New creates a maintainer. metrics may be nil.
func New(compactor Compactor, flusher Flusher, interval time.Duration, metrics Metrics) *Maintainer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Maintainer{
		compactor: compactor,
		flusher:   flusher,
		interval:  interval,
		metrics:   metrics,
	}
}

// Interval returns the configured tick spacing.
func (m *Maintainer) Interval() time.Duration {
	return m.interval
}

// Arm schedules the maintenance task on the given scheduler.
func (m *Maintainer) Arm(s Scheduler) {
	logger.Info("Arming wallet maintenance task", "interval", m.interval)
	s.ScheduleEvery(m.tick, m.interval)
}

// tick is one maintenance pass: flush active wallets, then let the engine
// reclaim space.
func (m *Maintainer) tick(ctx context.Context) {
	m.flusher.FlushAll(ctx)

	start := time.Now()
	err := m.compactor.Compact(ctx)
	if err != nil {
		logger.Error("Wallet compaction failed", "error", err)
	}
	if m.metrics != nil {
		m.metrics.ObserveCompaction(time.Since(start), err)
	}
}
