// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package counterstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ReadEmpty(t *testing.T) {
	store := NewMemoryStore()
	snap, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Sounds)
}

func TestMemoryStore_CopiesOnReadAndWrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	snap := stats.NewSnapshot()
	snap.Apply("a", stats.EventDownload, 1, time.Time{})
	require.NoError(t, store.Write(ctx, snap))

	// Mutating the written value must not leak into the store.
	snap.Apply("a", stats.EventDownload, 1, time.Time{})

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Counters("a").Downloads)

	got.Apply("a", stats.EventDownload, 1, time.Time{})
	again, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Counters("a").Downloads)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Write(ctx, stats.NewSnapshot()), context.Canceled)
}

// Concurrent writers through the service may lose increments, but the
// stored counters never exceed the number of events and never go negative.
func TestMemoryStore_ConcurrentWritersLoseUpdatesOnly(t *testing.T) {
	store := NewMemoryStore()
	svc := stats.NewService(stats.DefaultConfig(), store)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Record(ctx, "race", stats.EventDownload)
		}()
	}
	wg.Wait()

	got, err := store.Read(ctx)
	require.NoError(t, err)
	downloads := got.Counters("race").Downloads
	assert.GreaterOrEqual(t, downloads, int64(1))
	assert.LessOrEqual(t, downloads, int64(writers))
	assert.Equal(t, downloads, got.Global.TotalDownloads)
}
