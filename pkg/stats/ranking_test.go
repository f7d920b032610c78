// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopByFavorites(t *testing.T) {
	source := map[string]SoundCounters{
		"a": {Favorites: 3},
		"b": {Favorites: 0},
		"c": {Favorites: 7},
		"d": {Favorites: 1},
		"e": {Favorites: 0},
	}

	top := TopByFavorites(source, 5)

	assert.Len(t, top, 3)
	var favs []int64
	for _, r := range top {
		favs = append(favs, r.Stats.Favorites)
	}
	assert.Equal(t, []int64{7, 3, 1}, favs)
	assert.Equal(t, "c", top[0].SoundID)
}

func TestTopByPlays_TiesAndLimit(t *testing.T) {
	source := map[string]SoundCounters{
		"zelda": {Plays: 10},
		"alpha": {Plays: 10},
		"mid":   {Plays: 4},
		"none":  {Downloads: 9},
	}

	top := TopByPlays(source, 2)
	assert.Equal(t, []Ranked{
		{SoundID: "alpha", Stats: SoundCounters{Plays: 10}},
		{SoundID: "zelda", Stats: SoundCounters{Plays: 10}},
	}, top)

	assert.Empty(t, TopByPlays(source, 0))
	assert.Empty(t, TopByPlays(nil, 5))
	assert.Len(t, TopByDownloads(source, 10), 1)
}

func TestTotals(t *testing.T) {
	got := Totals(map[string]SoundCounters{
		"a": {Plays: 2, Downloads: 1, Favorites: 1},
		"b": {Plays: 3, Favorites: 0},
	})
	assert.Equal(t, GlobalCounters{TotalPlays: 5, TotalDownloads: 1, TotalFavorites: 1}, got)
}
