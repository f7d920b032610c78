// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps the snapshot as a deep copy and counts calls.
type fakeStore struct {
	mu       sync.Mutex
	snap     *Snapshot
	reads    int
	writes   int
	readErr  error
	writeErr error
}

func (f *fakeStore) Read(ctx context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.snap.Clone(), nil
}

func (f *fakeStore) Write(ctx context.Context, snap *Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.snap = snap.Clone()
	return nil
}

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func newTestService(store Store, draw float64) *Service {
	cfg := DefaultConfig()
	return NewService(cfg, store,
		WithSampler(NewSampler(cfg.SampleRate, fixedDraw(draw))),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestService_OverviewEmpty(t *testing.T) {
	svc := newTestService(&fakeStore{}, 0)

	ov, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, GlobalCounters{}, ov.Global)
	assert.NotNil(t, ov.Top)
	assert.Empty(t, ov.Top)
}

func TestService_DownloadThenRead(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, 0)
	ctx := context.Background()

	res, err := svc.Record(ctx, "nintendo_mario-coin", EventDownload)
	require.NoError(t, err)
	assert.False(t, res.Sampled)
	require.NotNil(t, res.Stats)
	assert.Equal(t, int64(1), res.Stats.Downloads)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ov.Top["nintendo_mario-coin"].Downloads)
	assert.Equal(t, int64(1), ov.Global.TotalDownloads)
	assert.Equal(t, fixedNow, ov.Global.LastUpdated)
}

func TestService_FavoriteNeverNegative(t *testing.T) {
	svc := newTestService(&fakeStore{}, 0)
	ctx := context.Background()

	for _, e := range []EventType{EventFavorite, EventUnfavorite, EventUnfavorite} {
		_, err := svc.Record(ctx, "x", e)
		require.NoError(t, err)
	}

	got, err := svc.SoundStats(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Favorites)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ov.Global.TotalFavorites)
}

func TestService_PlaySampledIn(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, 0.05)

	res, err := svc.Record(context.Background(), "x", EventPlay)
	require.NoError(t, err)
	require.NotNil(t, res.Stats)
	assert.Equal(t, int64(5), res.Stats.Plays)
	assert.Equal(t, int64(5), store.snap.Global.TotalPlays)
}

func TestService_PlaySampledOutTouchesNothing(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, 0.9)

	res, err := svc.Record(context.Background(), "x", EventPlay)
	require.NoError(t, err)
	assert.True(t, res.Sampled)
	assert.Nil(t, res.Stats)
	assert.Equal(t, 0, store.reads)
	assert.Equal(t, 0, store.writes)
}

func TestService_Validation(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, 0)
	ctx := context.Background()

	_, err := svc.Record(ctx, "", EventDownload)
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = svc.Record(ctx, "x", EventType("skip"))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = svc.SoundStats(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidEvent)

	assert.Equal(t, 0, store.reads)
	assert.Equal(t, 0, store.writes)
}

func TestService_StoreFailures(t *testing.T) {
	ctx := context.Background()

	readFail := &fakeStore{readErr: errors.New("connection reset")}
	_, err := newTestService(readFail, 0).Record(ctx, "x", EventDownload)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 0, readFail.writes)

	_, err = newTestService(readFail, 0).Overview(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	writeFail := &fakeStore{writeErr: errors.New("quota exceeded")}
	_, err = newTestService(writeFail, 0).Record(ctx, "x", EventDownload)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 1, writeFail.reads)
	assert.Equal(t, 1, writeFail.writes)
}

func TestService_SequentialMixMatchesDeltas(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, 0)
	ctx := context.Background()

	events := []EventType{EventDownload, EventFavorite, EventDownload, EventUnfavorite, EventUnfavorite, EventFavorite}
	want := SoundCounters{}
	for _, e := range events {
		_, err := svc.Record(ctx, "chime", e)
		require.NoError(t, err)
		want = ApplyEvent(want, e, 1)
	}

	got, err := svc.SoundStats(ctx, "chime")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, len(events), store.writes)
}

type notifierFunc func(ctx context.Context, rec Recorded)

func (f notifierFunc) Notify(ctx context.Context, rec Recorded) { f(ctx, rec) }

func TestService_NotifiesOnlyAfterWrite(t *testing.T) {
	store := &fakeStore{}
	var got []Recorded
	cfg := DefaultConfig()
	svc := NewService(cfg, store,
		WithSampler(NewSampler(cfg.SampleRate, fixedDraw(0.9))),
		WithClock(func() time.Time { return fixedNow }),
		WithNotifier(notifierFunc(func(_ context.Context, rec Recorded) {
			got = append(got, rec)
		})),
	)
	ctx := context.Background()

	_, err := svc.Record(ctx, "chime_bell", EventDownload)
	require.NoError(t, err)

	// Sampled out: nothing written, nothing announced.
	res, err := svc.Record(ctx, "chime_bell", EventPlay)
	require.NoError(t, err)
	require.True(t, res.Sampled)

	store.writeErr = errors.New("down")
	_, err = svc.Record(ctx, "chime_bell", EventFavorite)
	require.Error(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "chime_bell", got[0].SoundID)
	assert.Equal(t, EventDownload, got[0].Event)
	assert.Equal(t, int64(1), got[0].Weight)
	assert.Equal(t, int64(1), got[0].Stats.Downloads)
	assert.Equal(t, fixedNow, got[0].At)
}
