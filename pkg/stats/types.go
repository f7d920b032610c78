// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package stats holds the play/download/favorite counter model shared by the
// server-side aggregation service and the client-side event recorder.
//
// The whole counter state lives in one Snapshot that is read and written
// wholesale through a Store. Both sides change counters only through
// ApplyEvent so that optimistic client updates match what the server records.
package stats

import (
	"maps"
	"strings"
	"time"
)

// EventType is a user action that moves a counter.
type EventType string

const (
	EventPlay       EventType = "play"
	EventDownload   EventType = "download"
	EventFavorite   EventType = "favorite"
	EventUnfavorite EventType = "unfavorite"
)

// EventTypes lists every recognized event in a stable order.
var EventTypes = []EventType{EventPlay, EventDownload, EventFavorite, EventUnfavorite}

// Valid reports whether e is one of the four recognized events.
func (e EventType) Valid() bool {
	switch e {
	case EventPlay, EventDownload, EventFavorite, EventUnfavorite:
		return true
	}
	return false
}

// ParseEventType accepts the wire spelling of an event. Matching is exact;
// "Play" is rejected like any other unknown value.
func ParseEventType(s string) (EventType, bool) {
	e := EventType(s)
	return e, e.Valid()
}

// SoundCounters are the counters kept for one sound.
type SoundCounters struct {
	Plays     int64 `json:"plays"`
	Downloads int64 `json:"downloads"`
	Favorites int64 `json:"favorites"`
}

// GlobalCounters is the rollup across every sound as of the last write.
type GlobalCounters struct {
	TotalPlays     int64     `json:"totalPlays"`
	TotalDownloads int64     `json:"totalDownloads"`
	TotalFavorites int64     `json:"totalFavorites"`
	LastUpdated    time.Time `json:"lastUpdated,omitzero"`
}

// Snapshot is the single persisted record: per-sound counters plus rollup.
type Snapshot struct {
	Sounds map[string]SoundCounters `json:"sounds"`
	Global GlobalCounters           `json:"global"`
}

// NewSnapshot returns the empty default snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{Sounds: make(map[string]SoundCounters)}
}

// Clone returns a deep copy. A nil snapshot clones to the empty default.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return NewSnapshot()
	}
	c := &Snapshot{
		Sounds: make(map[string]SoundCounters, len(s.Sounds)),
		Global: s.Global,
	}
	maps.Copy(c.Sounds, s.Sounds)
	return c
}

// Counters returns the counters for soundID; absent sounds read as zero.
func (s *Snapshot) Counters(soundID string) SoundCounters {
	if s == nil {
		return SoundCounters{}
	}
	return s.Sounds[soundID]
}

// Normalize replaces a nil map so decoded snapshots are safe to mutate.
func (s *Snapshot) Normalize() {
	if s.Sounds == nil {
		s.Sounds = make(map[string]SoundCounters)
	}
}

// Category returns the catalog category encoded in a sound id
// ("nintendo_mario-coin" -> "nintendo").
func Category(soundID string) string {
	category, _, _ := strings.Cut(soundID, "_")
	if category == "" {
		return "other"
	}
	return category
}
