// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package recorder

import "github.com/LeeDigitalWorks/lockchime/pkg/stats"

// Mode-aware getters. In personal mode they read the mirror, otherwise the
// worldwide view (all zero before the first Refresh).

// sourceLocked returns the counters for the current mode. Caller holds r.mu
// and must not retain or mutate the result.
func (r *Recorder) sourceLocked() map[string]stats.SoundCounters {
	if r.mode == ModePersonal {
		return r.mirror.counters
	}
	if r.worldwide == nil {
		return nil
	}
	return r.worldwide.Sounds
}

func (r *Recorder) counters(soundID string) stats.SoundCounters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sourceLocked()[soundID]
}

func (r *Recorder) PlayCount(soundID string) int64 {
	return r.counters(soundID).Plays
}

func (r *Recorder) DownloadCount(soundID string) int64 {
	return r.counters(soundID).Downloads
}

func (r *Recorder) FavoriteCount(soundID string) int64 {
	return r.counters(soundID).Favorites
}

// TopSounds ranks by plays.
func (r *Recorder) TopSounds(limit int) []stats.Ranked {
	r.mu.Lock()
	defer r.mu.Unlock()
	return stats.TopByPlays(r.sourceLocked(), limit)
}

// TopFavorited ranks by favorites.
func (r *Recorder) TopFavorited(limit int) []stats.Ranked {
	r.mu.Lock()
	defer r.mu.Unlock()
	return stats.TopByFavorites(r.sourceLocked(), limit)
}

// Totals returns the rollup for the current mode. Personal totals are
// summed from the mirror.
func (r *Recorder) Totals() stats.GlobalCounters {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == ModePersonal {
		return stats.Totals(r.mirror.counters)
	}
	if r.worldwide == nil {
		return stats.GlobalCounters{}
	}
	return r.worldwide.Global
}
