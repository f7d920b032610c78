// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package recorder

import (
	"errors"
	"maps"

	"github.com/LeeDigitalWorks/lockchime/pkg/localstate"
	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"
)

// Mirror is the device-local copy of this user's own counters. Unlike the
// shared counters, favorites here are a 0/1 flag.
type Mirror struct {
	counters map[string]stats.SoundCounters
	state    localstate.Store
}

// LoadMirror reads the mirror from state. A missing or unreadable value
// starts an empty mirror.
func LoadMirror(state localstate.Store) *Mirror {
	m := &Mirror{
		counters: make(map[string]stats.SoundCounters),
		state:    state,
	}
	if state == nil {
		return m
	}
	if err := localstate.GetJSON(state, MirrorKey, &m.counters); err != nil {
		if !errors.Is(err, localstate.ErrNotFound) {
			logger.Warn().Err(err).Msg("failed to load personal stats")
		}
		m.counters = make(map[string]stats.SoundCounters)
	}
	if m.counters == nil {
		m.counters = make(map[string]stats.SoundCounters)
	}
	return m
}

// Apply records event for soundID and persists the mirror.
func (m *Mirror) Apply(soundID string, event stats.EventType) stats.SoundCounters {
	c := m.counters[soundID]
	switch event {
	case stats.EventPlay:
		c.Plays++
	case stats.EventDownload:
		c.Downloads++
	case stats.EventFavorite:
		c.Favorites = 1
	case stats.EventUnfavorite:
		c.Favorites = 0
	}
	m.counters[soundID] = c
	m.save()
	return c
}

// Counters returns soundID's personal counters.
func (m *Mirror) Counters(soundID string) stats.SoundCounters {
	return m.counters[soundID]
}

// Snapshot returns a copy of every personal counter.
func (m *Mirror) Snapshot() map[string]stats.SoundCounters {
	return maps.Clone(m.counters)
}

func (m *Mirror) save() {
	if m.state == nil {
		return
	}
	if err := localstate.PutJSON(m.state, MirrorKey, m.counters); err != nil {
		logger.Warn().Err(err).Msg("failed to save personal stats")
	}
}

// DedupSet remembers sound ids already sent this session.
type DedupSet struct {
	seen map[string]struct{}
}

func NewDedupSet() *DedupSet {
	return &DedupSet{seen: make(map[string]struct{})}
}

// Add records soundID and reports whether it was new.
func (d *DedupSet) Add(soundID string) bool {
	if _, ok := d.seen[soundID]; ok {
		return false
	}
	d.seen[soundID] = struct{}{}
	return true
}

// Contains reports whether soundID has been recorded.
func (d *DedupSet) Contains(soundID string) bool {
	_, ok := d.seen[soundID]
	return ok
}

// Len returns the number of recorded ids.
func (d *DedupSet) Len() int {
	return len(d.seen)
}
