package chain

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTipHeight(t *testing.T) {
	tip := NewTip(100)

	h, err := tip.Height(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), h)
}

func TestAdvanceNeverMovesBackwards(t *testing.T) {
	tip := NewTip(100)

	tip.Advance(150)
	tip.Advance(120) // stale

	h, err := tip.Height(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(150), h)
}

func TestAdvanceConcurrent(t *testing.T) {
	tip := NewTip(0)

	var wg sync.WaitGroup
	for i := int64(1); i <= 100; i++ {
		wg.Add(1)
		go func(h int64) {
			defer wg.Done()
			tip.Advance(h)
		}(i)
	}
	wg.Wait()

	h, err := tip.Height(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), h)
}

func TestHeightHonorsContext(t *testing.T) {
	tip := NewTip(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tip.Height(ctx)
	assert.Error(t, err)
}
