// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyEvent(t *testing.T) {
	tests := []struct {
		name   string
		start  SoundCounters
		event  EventType
		weight int64
		want   SoundCounters
	}{
		{name: "play uses weight", event: EventPlay, weight: 5, want: SoundCounters{Plays: 5}},
		{name: "play weight one", start: SoundCounters{Plays: 2}, event: EventPlay, weight: 1, want: SoundCounters{Plays: 3}},
		{name: "download ignores weight", event: EventDownload, weight: 5, want: SoundCounters{Downloads: 1}},
		{name: "favorite", start: SoundCounters{Favorites: 2}, event: EventFavorite, weight: 1, want: SoundCounters{Favorites: 3}},
		{name: "unfavorite", start: SoundCounters{Favorites: 2}, event: EventUnfavorite, weight: 1, want: SoundCounters{Favorites: 1}},
		{name: "unfavorite floors at zero", event: EventUnfavorite, weight: 1, want: SoundCounters{}},
		{name: "unknown event is a no-op", start: SoundCounters{Plays: 1}, event: EventType("skip"), weight: 1, want: SoundCounters{Plays: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyEvent(tt.start, tt.event, tt.weight))
		})
	}
}

func TestApplyGlobal_FavoritesFloor(t *testing.T) {
	g := GlobalCounters{TotalFavorites: 1}
	g = ApplyGlobal(g, EventUnfavorite, 1)
	g = ApplyGlobal(g, EventUnfavorite, 1)
	assert.Equal(t, int64(0), g.TotalFavorites)
}

func TestSnapshotApply_LazyEntry(t *testing.T) {
	snap := &Snapshot{}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	got := snap.Apply("nintendo_mario-coin", EventDownload, 1, now)

	assert.Equal(t, SoundCounters{Downloads: 1}, got)
	assert.Equal(t, int64(1), snap.Global.TotalDownloads)
	assert.Equal(t, now, snap.Global.LastUpdated)
	assert.Len(t, snap.Sounds, 1)
}

func TestSnapshotApply_DeterministicSequence(t *testing.T) {
	snap := NewSnapshot()
	events := []EventType{
		EventDownload, EventFavorite, EventUnfavorite, EventUnfavorite,
		EventDownload, EventFavorite, EventFavorite, EventUnfavorite,
	}

	want := SoundCounters{}
	for _, e := range events {
		snap.Apply("x", e, 1, time.Time{})
		want = ApplyEvent(want, e, 1)
	}

	assert.Equal(t, SoundCounters{Downloads: 2, Favorites: 1}, want)
	assert.Equal(t, want, snap.Counters("x"))
	assert.Equal(t, int64(2), snap.Global.TotalDownloads)
	assert.Equal(t, int64(1), snap.Global.TotalFavorites)
	assert.True(t, snap.Global.LastUpdated.IsZero())
}

func TestSnapshotClone(t *testing.T) {
	snap := NewSnapshot()
	snap.Apply("a", EventPlay, 1, time.Time{})

	c := snap.Clone()
	c.Apply("a", EventPlay, 1, time.Time{})

	assert.Equal(t, int64(1), snap.Counters("a").Plays)
	assert.Equal(t, int64(2), c.Counters("a").Plays)

	var nilSnap *Snapshot
	assert.NotNil(t, nilSnap.Clone().Sounds)
	assert.Equal(t, SoundCounters{}, nilSnap.Counters("a"))
}

func TestParseEventType(t *testing.T) {
	for _, e := range EventTypes {
		got, ok := ParseEventType(string(e))
		assert.True(t, ok)
		assert.Equal(t, e, got)
	}

	for _, s := range []string{"", "Play", "skip", " play"} {
		_, ok := ParseEventType(s)
		assert.False(t, ok, "%q should be rejected", s)
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "nintendo", Category("nintendo_mario-coin"))
	assert.Equal(t, "chime", Category("chime"))
	assert.Equal(t, "other", Category("_x"))
}
