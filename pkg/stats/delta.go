// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import "time"

// ApplyEvent returns c with one event applied. weight scales the play
// increment (sampling compensation) and is ignored for every other event.
// Favorites never drop below zero.
func ApplyEvent(c SoundCounters, event EventType, weight int64) SoundCounters {
	switch event {
	case EventPlay:
		c.Plays += weight
	case EventDownload:
		c.Downloads++
	case EventFavorite:
		c.Favorites++
	case EventUnfavorite:
		c.Favorites = max(0, c.Favorites-1)
	}
	return c
}

// ApplyGlobal applies the same rule to the rollup.
func ApplyGlobal(g GlobalCounters, event EventType, weight int64) GlobalCounters {
	switch event {
	case EventPlay:
		g.TotalPlays += weight
	case EventDownload:
		g.TotalDownloads++
	case EventFavorite:
		g.TotalFavorites++
	case EventUnfavorite:
		g.TotalFavorites = max(0, g.TotalFavorites-1)
	}
	return g
}

// Apply records one event against soundID, creating its entry lazily, and
// returns the sound's updated counters. A zero now leaves LastUpdated as is.
func (s *Snapshot) Apply(soundID string, event EventType, weight int64, now time.Time) SoundCounters {
	s.Normalize()

	updated := ApplyEvent(s.Sounds[soundID], event, weight)
	s.Sounds[soundID] = updated
	s.Global = ApplyGlobal(s.Global, event, weight)
	if !now.IsZero() {
		s.Global.LastUpdated = now
	}
	return updated
}
