// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package recorder is the client side of the stats subsystem. It keeps a
// per-device personal mirror, suppresses repeat plays and downloads within
// a session, patches its copy of the worldwide counters optimistically and
// sends queued events to the aggregation service after a quiet period.
package recorder

import (
	"context"
	"errors"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/stats"
)

// Local state keys.
const (
	MirrorKey = "lockchime-my-stats"
	ModeKey   = "lockchime-stats-mode"
)

// ErrNoFetcher is returned by Refresh on a recorder built without a Fetcher.
var ErrNoFetcher = errors.New("recorder: no fetcher")

// Event is one queued write to the aggregation service.
type Event struct {
	SoundID string          `json:"soundId"`
	Event   stats.EventType `json:"event"`
}

// Sender delivers one event to the aggregation service write path.
type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// Fetcher reads the full worldwide state.
type Fetcher interface {
	Fetch(ctx context.Context) (*stats.Overview, error)
}

// Mode selects which counters the mode-aware getters read.
type Mode string

const (
	ModeWorldwide Mode = "worldwide"
	ModePersonal  Mode = "personal"
)

// ParseMode maps anything other than "personal" to ModeWorldwide.
func ParseMode(s string) Mode {
	if Mode(s) == ModePersonal {
		return ModePersonal
	}
	return ModeWorldwide
}

// Config holds recorder settings.
type Config struct {
	// Debounce is the quiet period after the last queued event before the
	// queue is sent. Default: 1 second.
	Debounce time.Duration `mapstructure:"debounce"`

	// SendTimeout bounds each event send during a timer-driven drain.
	// Default: 10 seconds.
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Debounce:    time.Second,
		SendTimeout: 10 * time.Second,
	}
}

// Validate applies defaults for out-of-range values.
func (c *Config) Validate() {
	if c.Debounce <= 0 {
		c.Debounce = time.Second
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
}
