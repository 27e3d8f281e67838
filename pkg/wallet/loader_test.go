package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	mu     sync.Mutex
	loaded []int
}

func (m *recordingMetrics) SetWalletsLoaded(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = append(m.loaded, n)
}

func TestLoaderLoadAdmitsAllWallets(t *testing.T) {
	engine := newFakeEngine()
	metrics := &recordingMetrics{}
	loader := NewLoader(engine, Options{
		WalletDir: "/data/wallets",
		Wallets:   []string{"default", "savings"},
		Metrics:   metrics,
	})

	require.NoError(t, loader.Load(context.Background(), &fakeChain{height: 100}))

	handles := loader.Registry().List()
	require.Len(t, handles, 2)
	assert.Equal(t, "default", handles[0].Name())
	assert.Equal(t, "savings", handles[1].Name())
	assert.Equal(t, []int{2}, metrics.loaded)
}

func TestLoaderLoadIsAllOrNothing(t *testing.T) {
	engine := newFakeEngine()
	engine.openErrs["savings"] = errors.New("lock held by another process")
	loader := NewLoader(engine, Options{
		WalletDir: "/data/wallets",
		Wallets:   []string{"default", "savings", "cold"},
	})

	err := loader.Load(context.Background(), &fakeChain{})
	require.Error(t, err)
	assert.ErrorContains(t, err, `"savings"`)

	// The wallet opened before the failure was drained again.
	assert.Equal(t, 0, loader.Registry().Count())
	require.Len(t, engine.opened, 1)
	assert.Equal(t, 1, engine.opened[0].terminalFlushCount())
	assert.Equal(t, 1, engine.opened[0].releaseCount())
}

func TestLoaderLoadFailsOnDuplicate(t *testing.T) {
	engine := newFakeEngine()
	loader := NewLoader(engine, Options{
		WalletDir: "/data/wallets",
		Wallets:   []string{"A", "A"},
	})

	err := loader.Load(context.Background(), &fakeChain{})

	var dup *DuplicateWalletError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 0, loader.Registry().Count())
	assert.Empty(t, engine.opened, "nothing may be opened after a dead verification batch")
}

func TestLoaderStartActivatesWallets(t *testing.T) {
	engine := newFakeEngine()
	loader := NewLoader(engine, Options{
		WalletDir: "/data/wallets",
		Wallets:   []string{"default"},
	})

	require.NoError(t, loader.Load(context.Background(), &fakeChain{}))
	require.NoError(t, loader.Start(context.Background()))
	defer func() {
		loader.Stop(context.Background())
		loader.Unload()
	}()

	require.Len(t, engine.opened, 1)
	assert.Equal(t, 1, engine.opened[0].postInits)
}

func TestLoaderMaintenanceRunsPeriodically(t *testing.T) {
	engine := newFakeEngine()
	loader := NewLoader(engine, Options{
		WalletDir:           "/data/wallets",
		Wallets:             []string{"default"},
		MaintenanceInterval: 10 * time.Millisecond,
	})

	require.NoError(t, loader.Load(context.Background(), &fakeChain{}))
	require.NoError(t, loader.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return engine.compactCount() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	loader.Stop(context.Background())

	// After Stop returns the scheduler is disarmed: the pass count must
	// not advance again.
	settled := engine.compactCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, engine.compactCount())

	loader.Unload()
}

func TestLoaderShutdownSequence(t *testing.T) {
	engine := newFakeEngine()
	metrics := &recordingMetrics{}
	loader := NewLoader(engine, Options{
		WalletDir: "/data/wallets",
		Wallets:   []string{"default", "savings"},
		Metrics:   metrics,
	})

	ctx := context.Background()
	require.NoError(t, loader.Load(ctx, &fakeChain{}))
	require.NoError(t, loader.Start(ctx))

	loader.Stop(ctx)
	for _, h := range engine.opened {
		assert.Equal(t, 1, h.terminalFlushCount(), "every wallet gets exactly one terminal flush")
		assert.Equal(t, 0, h.releaseCount(), "nothing is released before unload")
	}

	loader.Unload()
	for _, h := range engine.opened {
		assert.Equal(t, 1, h.releaseCount())
	}
	assert.Equal(t, 0, loader.Registry().Count())
	assert.Equal(t, []int{2, 0}, metrics.loaded)
}

func TestLoaderFlushIsNonTerminal(t *testing.T) {
	engine := newFakeEngine()
	loader := NewLoader(engine, Options{
		WalletDir: "/data/wallets",
		Wallets:   []string{"default"},
	})

	ctx := context.Background()
	require.NoError(t, loader.Load(ctx, &fakeChain{}))
	require.NoError(t, loader.Start(ctx))

	loader.Flush(ctx)

	require.Len(t, engine.opened, 1)
	h := engine.opened[0]
	h.mu.Lock()
	flushes, terminal := h.flushes, h.terminalFlushes
	h.mu.Unlock()
	assert.GreaterOrEqual(t, flushes, 1)
	assert.Equal(t, 0, terminal)

	loader.Stop(ctx)
	loader.Unload()
}
