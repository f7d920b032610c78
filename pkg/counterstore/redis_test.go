// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package counterstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/stats"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	return s, client
}

func TestRedisStore_ReadMissingKey(t *testing.T) {
	_, client := setupTestRedis(t)
	defer client.Close()

	store := NewRedisStoreWithClient(client, DefaultRedisConfig(""))

	snap, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Sounds)
	assert.NotNil(t, snap.Sounds)
	assert.Equal(t, stats.GlobalCounters{}, snap.Global)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer client.Close()

	cfg := DefaultRedisConfig(mr.Addr())
	store := NewRedisStoreWithClient(client, cfg)
	ctx := context.Background()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	snap := stats.NewSnapshot()
	snap.Apply("nintendo_mario-coin", stats.EventDownload, 1, now)
	snap.Apply("nintendo_mario-coin", stats.EventFavorite, 1, now)

	require.NoError(t, store.Write(ctx, snap))
	assert.True(t, mr.Exists("lockchime:stats:_all"))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.SoundCounters{Downloads: 1, Favorites: 1}, got.Counters("nintendo_mario-coin"))
	assert.Equal(t, int64(1), got.Global.TotalDownloads)
	assert.True(t, now.Equal(got.Global.LastUpdated))
}

func TestRedisStore_WireFormat(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer client.Close()

	mr.Set("stats:_all", `{"sounds":{"x":{"plays":5,"downloads":0,"favorites":2}},"global":{"totalPlays":5,"totalDownloads":0,"totalFavorites":2}}`)

	store := NewRedisStoreWithClient(client, RedisConfig{})
	got, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.SoundCounters{Plays: 5, Favorites: 2}, got.Counters("x"))
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer client.Close()

	mr.Set("stats:_all", "not json")

	store := NewRedisStoreWithClient(client, RedisConfig{})
	_, err := store.Read(context.Background())
	assert.Error(t, err)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer client.Close()

	store := NewRedisStoreWithClient(client, RedisConfig{})
	mr.Close()

	_, err := store.Read(context.Background())
	assert.Error(t, err)
	assert.Error(t, store.Write(context.Background(), stats.NewSnapshot()))
}

func TestNewRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(DefaultRedisConfig(mr.Addr()))
	require.NoError(t, err)
	defer store.Close()
	assert.NoError(t, store.Ping(context.Background()))

	_, err = NewRedisStore(RedisConfig{})
	assert.Error(t, err)
}

func TestRedisStore_Compression(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer client.Close()
	ctx := context.Background()

	snap := stats.NewSnapshot()
	for i := range 100 {
		snap.Apply(fmt.Sprintf("retro_sound-%03d", i), stats.EventDownload, 1, time.Time{})
	}

	cfg := DefaultRedisConfig(mr.Addr())
	cfg.Compression = "zstd"
	require.NoError(t, NewRedisStoreWithClient(client, cfg).Write(ctx, snap))

	raw, err := mr.Get("lockchime:stats:_all")
	require.NoError(t, err)
	assert.NotEqual(t, byte('{'), raw[0])

	// A reader configured without compression still decodes it.
	cfg.Compression = ""
	got, err := NewRedisStoreWithClient(client, cfg).Read(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Sounds, 100)
	assert.Equal(t, int64(100), got.Global.TotalDownloads)
}

func TestRedisStore_ServiceIntegration(t *testing.T) {
	_, client := setupTestRedis(t)
	defer client.Close()

	store := NewRedisStoreWithClient(client, DefaultRedisConfig(""))
	svc := stats.NewService(stats.DefaultConfig(), store)
	ctx := context.Background()

	_, err := svc.Record(ctx, "nintendo_mario-coin", stats.EventDownload)
	require.NoError(t, err)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ov.Top["nintendo_mario-coin"].Downloads)
	assert.Equal(t, int64(1), ov.Global.TotalDownloads)
}
