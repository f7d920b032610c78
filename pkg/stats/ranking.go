// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"cmp"
	"slices"
)

// Ranked pairs a sound with its counters in a ranking.
type Ranked struct {
	SoundID string        `json:"soundId"`
	Stats   SoundCounters `json:"stats"`
}

// TopByPlays returns sounds with at least one play, most played first.
func TopByPlays(source map[string]SoundCounters, limit int) []Ranked {
	return topBy(source, limit, func(c SoundCounters) int64 { return c.Plays })
}

// TopByFavorites returns favorited sounds, most favorited first.
func TopByFavorites(source map[string]SoundCounters, limit int) []Ranked {
	return topBy(source, limit, func(c SoundCounters) int64 { return c.Favorites })
}

// TopByDownloads returns downloaded sounds, most downloaded first.
func TopByDownloads(source map[string]SoundCounters, limit int) []Ranked {
	return topBy(source, limit, func(c SoundCounters) int64 { return c.Downloads })
}

// Ties are broken by sound id so rankings are deterministic.
func topBy(source map[string]SoundCounters, limit int, key func(SoundCounters) int64) []Ranked {
	if limit <= 0 || len(source) == 0 {
		return []Ranked{}
	}

	ranked := make([]Ranked, 0, len(source))
	for id, c := range source {
		if key(c) > 0 {
			ranked = append(ranked, Ranked{SoundID: id, Stats: c})
		}
	}

	slices.SortFunc(ranked, func(a, b Ranked) int {
		if n := cmp.Compare(key(b.Stats), key(a.Stats)); n != 0 {
			return n
		}
		return cmp.Compare(a.SoundID, b.SoundID)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Totals sums source into a rollup. LastUpdated is left zero.
func Totals(source map[string]SoundCounters) GlobalCounters {
	var g GlobalCounters
	for _, c := range source {
		g.TotalPlays += c.Plays
		g.TotalDownloads += c.Downloads
		g.TotalFavorites += c.Favorites
	}
	return g
}
