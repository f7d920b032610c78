// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
)

// Overview is the read-path response: the rollup and every sound's counters.
type Overview struct {
	Global GlobalCounters           `json:"global"`
	Top    map[string]SoundCounters `json:"top"`
}

// Result is the outcome of an accepted write.
type Result struct {
	// Sampled is true when a play was dropped by the sampler. Nothing was
	// written and Stats is nil.
	Sampled bool
	Stats   *SoundCounters
}

// Service applies events to the counter store.
//
// Record is a read-modify-write over the whole snapshot with no locking.
// Two concurrent writers can read the same snapshot and the later Write
// drops the earlier increment. This is accepted for the write volume the
// service sees and is not detected.
type Service struct {
	store    Store
	sampler  *Sampler
	notifier Notifier
	timeout  time.Duration
	now      func() time.Time
}

// Recorded describes an event that reached the store.
type Recorded struct {
	SoundID string
	Event   EventType
	Weight  int64
	Stats   SoundCounters
	At      time.Time
}

// Notifier is told about every recorded event after its write succeeds.
// Notify must not block the request path.
type Notifier interface {
	Notify(ctx context.Context, rec Recorded)
}

// Option configures a Service.
type Option func(*Service)

// WithSampler overrides the sampler built from Config.SampleRate.
func WithSampler(s *Sampler) Option {
	return func(svc *Service) {
		svc.sampler = s
	}
}

// WithNotifier registers n to receive recorded events.
func WithNotifier(n Notifier) Option {
	return func(svc *Service) {
		svc.notifier = n
	}
}

// WithClock overrides time.Now for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		svc.now = now
	}
}

// NewService creates a Service over store.
func NewService(cfg Config, store Store, opts ...Option) *Service {
	cfg.Validate()
	svc := &Service{
		store:   store,
		sampler: NewSampler(cfg.SampleRate, nil),
		timeout: cfg.StoreTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Overview reads the snapshot once and returns it whole. There is no
// filtering or paging, which is fine for a catalog of a few hundred sounds
// and would need per-sound keys beyond that.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	snap, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{Global: snap.Global, Top: snap.Sounds}, nil
}

// SoundStats returns one sound's counters, zero if it has none.
func (s *Service) SoundStats(ctx context.Context, soundID string) (SoundCounters, error) {
	if soundID == "" {
		return SoundCounters{}, fmt.Errorf("%w: sound id is required", ErrInvalidEvent)
	}
	snap, err := s.read(ctx)
	if err != nil {
		return SoundCounters{}, err
	}
	return snap.Counters(soundID), nil
}

// Record applies one event. Invalid input returns ErrInvalidEvent without
// touching the store; store failures return ErrStoreUnavailable.
func (s *Service) Record(ctx context.Context, soundID string, event EventType) (Result, error) {
	if soundID == "" || !event.Valid() {
		EventsTotal.WithLabelValues("unknown", "invalid").Inc()
		return Result{}, fmt.Errorf("%w: sound=%q event=%q", ErrInvalidEvent, soundID, event)
	}

	accepted, weight := s.sampler.Sample(event)
	if !accepted {
		EventsTotal.WithLabelValues(string(event), "sampled").Inc()
		return Result{Sampled: true}, nil
	}

	snap, err := s.read(ctx)
	if err != nil {
		EventsTotal.WithLabelValues(string(event), "error").Inc()
		return Result{}, err
	}

	at := s.now().UTC()
	updated := snap.Apply(soundID, event, weight, at)

	if err := s.write(ctx, snap); err != nil {
		EventsTotal.WithLabelValues(string(event), "error").Inc()
		return Result{}, err
	}

	EventsTotal.WithLabelValues(string(event), "recorded").Inc()
	logger.Debug().
		Str("sound", soundID).
		Str("event", string(event)).
		Int64("weight", weight).
		Msg("recorded stats event")

	if s.notifier != nil {
		s.notifier.Notify(ctx, Recorded{
			SoundID: soundID,
			Event:   event,
			Weight:  weight,
			Stats:   updated,
			At:      at,
		})
	}

	return Result{Stats: &updated}, nil
}

func (s *Service) read(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	snap, err := s.store.Read(ctx)
	StoreDuration.WithLabelValues("read").Observe(time.Since(start).Seconds())
	if err != nil {
		StoreErrorsTotal.WithLabelValues("read").Inc()
		return nil, fmt.Errorf("%w: read: %w", ErrStoreUnavailable, err)
	}
	if snap == nil {
		snap = NewSnapshot()
	}
	snap.Normalize()
	TrackedSounds.Set(float64(len(snap.Sounds)))
	return snap, nil
}

func (s *Service) write(ctx context.Context, snap *Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.store.Write(ctx, snap)
	StoreDuration.WithLabelValues("write").Observe(time.Since(start).Seconds())
	if err != nil {
		StoreErrorsTotal.WithLabelValues("write").Inc()
		return fmt.Errorf("%w: write: %w", ErrStoreUnavailable, err)
	}
	return nil
}
