// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/localstate"
	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"

	"github.com/google/uuid"
)

// Recorder records user actions. It is safe for concurrent use.
//
// Delivery is at most once: a failed send is logged and dropped. Events are
// sent one at a time in the order they were queued, and only one drain runs
// at a time. Events queued while a drain is running wait for the next one.
type Recorder struct {
	cfg     Config
	sender  Sender
	fetcher Fetcher
	state   localstate.Store
	session string

	mu        sync.Mutex
	mirror    *Mirror
	plays     *DedupSet
	downloads *DedupSet
	worldwide *stats.Snapshot // nil until the first successful Refresh
	mode      Mode
	pending   []Event
	timer     *time.Timer
	closed    bool

	// drainMu is held for the whole of a drain.
	drainMu sync.Mutex
}

// New creates a Recorder. state may be nil for a session with no persisted
// mirror or preference; fetcher may be nil if Refresh is never called.
func New(cfg Config, sender Sender, fetcher Fetcher, state localstate.Store) *Recorder {
	cfg.Validate()
	r := &Recorder{
		cfg:       cfg,
		sender:    sender,
		fetcher:   fetcher,
		state:     state,
		session:   uuid.NewString(),
		mirror:    LoadMirror(state),
		plays:     NewDedupSet(),
		downloads: NewDedupSet(),
		mode:      ModeWorldwide,
	}
	if state != nil {
		if data, err := state.Get(ModeKey); err == nil {
			r.mode = ParseMode(string(data))
		}
	}
	return r
}

// RecordPlay records a play.
func (r *Recorder) RecordPlay(soundID string) {
	r.RecordEvent(soundID, stats.EventPlay)
}

// RecordDownload records a download.
func (r *Recorder) RecordDownload(soundID string) {
	r.RecordEvent(soundID, stats.EventDownload)
}

// RecordFavorite records a favorite toggle.
func (r *Recorder) RecordFavorite(soundID string, favoriting bool) {
	if favoriting {
		r.RecordEvent(soundID, stats.EventFavorite)
		return
	}
	r.RecordEvent(soundID, stats.EventUnfavorite)
}

// RecordEvent updates the personal mirror and, unless the session already
// counted this play or download, patches the worldwide view and queues the
// event for sending. Invalid input is ignored.
func (r *Recorder) RecordEvent(soundID string, event stats.EventType) {
	if soundID == "" || !event.Valid() {
		logger.Debug().Str("sound", soundID).Str("event", string(event)).Msg("ignoring invalid stats event")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.mirror.Apply(soundID, event)

	switch event {
	case stats.EventPlay:
		if !r.plays.Add(soundID) {
			EventsDedupedTotal.WithLabelValues(string(event)).Inc()
			return
		}
	case stats.EventDownload:
		if !r.downloads.Add(soundID) {
			EventsDedupedTotal.WithLabelValues(string(event)).Inc()
			return
		}
	}

	if r.closed {
		EventsDroppedTotal.WithLabelValues("closed").Inc()
		return
	}

	if r.worldwide != nil {
		r.worldwide.Apply(soundID, event, 1, time.Time{})
	}

	r.pending = append(r.pending, Event{SoundID: soundID, Event: event})
	QueueDepth.Set(float64(len(r.pending)))
	r.armLocked()
}

// armLocked (re)starts the debounce timer. Caller holds r.mu.
func (r *Recorder) armLocked() {
	if r.timer == nil {
		r.timer = time.AfterFunc(r.cfg.Debounce, r.onTimer)
		return
	}
	r.timer.Reset(r.cfg.Debounce)
}

func (r *Recorder) onTimer() {
	if !r.drainMu.TryLock() {
		// A drain is in flight; try again after another quiet period.
		r.mu.Lock()
		if !r.closed && len(r.pending) > 0 {
			r.armLocked()
		}
		r.mu.Unlock()
		return
	}
	defer r.drainMu.Unlock()

	batch := r.takePending()
	r.send(context.Background(), batch, r.cfg.SendTimeout)
}

func (r *Recorder) takePending() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := r.pending
	r.pending = nil
	QueueDepth.Set(0)
	return batch
}

func (r *Recorder) send(ctx context.Context, batch []Event, timeout time.Duration) {
	for _, ev := range batch {
		sendCtx, cancel := context.WithTimeout(ctx, timeout)
		err := r.sender.Send(sendCtx, ev)
		cancel()
		if err != nil {
			EventsDroppedTotal.WithLabelValues("send_failed").Inc()
			logger.Warn().
				Err(err).
				Str("session", r.session).
				Str("sound", ev.SoundID).
				Str("event", string(ev.Event)).
				Msg("failed to record stat")
			continue
		}
		EventsSentTotal.Inc()
	}
}

// Flush sends everything queued now, waiting for any running drain first.
func (r *Recorder) Flush(ctx context.Context) {
	r.drainMu.Lock()
	defer r.drainMu.Unlock()

	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.mu.Unlock()

	r.send(ctx, r.takePending(), r.cfg.SendTimeout)
}

// Close flushes the queue and stops queueing. Later events only update the
// personal mirror.
func (r *Recorder) Close(ctx context.Context) {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.Flush(ctx)
}

// Session returns the id logged with this recorder's failures.
func (r *Recorder) Session() string {
	return r.session
}

// Pending returns the number of queued events.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Refresh replaces the worldwide view with a full fetch. On failure the
// previous view is kept.
func (r *Recorder) Refresh(ctx context.Context) error {
	if r.fetcher == nil {
		return ErrNoFetcher
	}
	ov, err := r.fetcher.Fetch(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to fetch stats")
		return err
	}

	snap := &stats.Snapshot{Sounds: ov.Top, Global: ov.Global}
	snap.Normalize()

	r.mu.Lock()
	r.worldwide = snap
	r.mu.Unlock()
	return nil
}

// Loaded reports whether a worldwide view has been fetched.
func (r *Recorder) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.worldwide != nil
}

// Mode returns the current view mode.
func (r *Recorder) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// SetMode switches the view and persists the preference. Stored counters
// are not touched.
func (r *Recorder) SetMode(mode Mode) {
	mode = ParseMode(string(mode))

	r.mu.Lock()
	r.mode = mode
	r.mu.Unlock()

	if r.state == nil {
		return
	}
	if err := r.state.Put(ModeKey, []byte(mode)); err != nil {
		logger.Warn().Err(err).Msg("failed to save stats mode")
	}
}

// Worldwide returns a copy of the worldwide view, or nil before Refresh.
func (r *Recorder) Worldwide() *stats.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.worldwide == nil {
		return nil
	}
	return r.worldwide.Clone()
}

// Personal returns a copy of the personal mirror.
func (r *Recorder) Personal() map[string]stats.SoundCounters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mirror.Snapshot()
}
