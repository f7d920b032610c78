// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"

	"github.com/google/uuid"
)

// Publisher delivers one encoded message. key is the sound id; publishers
// use it for channel naming or partitioning.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, key string, data []byte) error
	Close() error
}

// Emitter queues recorded events and delivers them to every publisher
// from a single worker goroutine. It implements stats.Notifier.
type Emitter struct {
	publishers []Publisher
	timeout    time.Duration

	mu     sync.RWMutex // guards closed against sends on queue
	closed bool
	queue  chan Message

	startOnce sync.Once
	done      chan struct{}

	// Monotonic counter for event ordering
	sequencer atomic.Uint64
}

var _ stats.Notifier = (*Emitter)(nil)

// NewEmitter creates an emitter over publishers. Call Start before
// recording events.
func NewEmitter(cfg Config, publishers ...Publisher) *Emitter {
	cfg.Validate()
	return &Emitter{
		publishers: publishers,
		timeout:    cfg.PublishTimeout,
		queue:      make(chan Message, cfg.BufferSize),
		done:       make(chan struct{}),
	}
}

// Start launches the delivery worker. Extra calls are no-ops.
func (e *Emitter) Start() {
	e.startOnce.Do(func() {
		go e.run()
	})
}

// Notify enqueues rec without blocking. Events are dropped when the queue
// is full or the emitter is stopped.
func (e *Emitter) Notify(ctx context.Context, rec stats.Recorded) {
	msg := NewMessage(rec)
	msg.ID = uuid.NewString()
	msg.Sequencer = e.nextSequencer()

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		EventsDroppedTotal.WithLabelValues("stopped").Inc()
		return
	}

	select {
	case e.queue <- msg:
		EventsQueueDepth.Set(float64(len(e.queue)))
	default:
		EventsDroppedTotal.WithLabelValues("full").Inc()
		logger.Ctx(ctx).Warn().
			Str("sound", rec.SoundID).
			Str("event", string(rec.Event)).
			Msg("event queue full, dropping event")
	}
}

// Stop closes the queue, waits for queued events to be delivered or ctx to
// end, then closes every publisher.
func (e *Emitter) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
	e.mu.Unlock()

	// A never-started emitter still drains what was queued.
	e.Start()

	var errs []error
	select {
	case <-e.done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}

	for _, p := range e.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Emitter) run() {
	defer close(e.done)
	for msg := range e.queue {
		EventsQueueDepth.Set(float64(len(e.queue)))
		e.deliver(msg)
	}
}

func (e *Emitter) deliver(msg Message) {
	data, err := msg.Encode()
	if err != nil {
		EventsDroppedTotal.WithLabelValues("marshal").Inc()
		logger.Warn().Err(err).Str("sound", msg.SoundID).Msg("failed to encode event")
		return
	}

	for _, p := range e.publishers {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		start := time.Now()
		err := p.Publish(ctx, msg.SoundID, data)
		cancel()
		EventsDeliveryDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

		if err != nil {
			EventsPublishedTotal.WithLabelValues(p.Name(), "error").Inc()
			logger.Warn().
				Err(err).
				Str("publisher", p.Name()).
				Str("sound", msg.SoundID).
				Str("event", string(msg.Event)).
				Msg("event delivery failed")
			continue
		}
		EventsPublishedTotal.WithLabelValues(p.Name(), "ok").Inc()
	}
}

// nextSequencer generates a unique, monotonically increasing sequencer value.
// Format: hex(timestamp_ms) + hex(counter) + random_suffix
func (e *Emitter) nextSequencer() string {
	ts := time.Now().UnixMilli()
	seq := e.sequencer.Add(1)

	suffix := make([]byte, 4)
	rand.Read(suffix)

	return hex.EncodeToString([]byte{
		byte(ts >> 40), byte(ts >> 32), byte(ts >> 24), byte(ts >> 16),
		byte(ts >> 8), byte(ts),
		byte(seq >> 8), byte(seq),
	}) + hex.EncodeToString(suffix)
}

// NewPublishers connects every publisher enabled in cfg. On error the
// publishers already opened are closed.
func NewPublishers(cfg Config) ([]Publisher, error) {
	cfg.Validate()

	var pubs []Publisher
	if cfg.Redis.Enabled {
		p, err := NewRedisPublisher(cfg.Redis)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		p, err := NewKafkaPublisher(cfg.Kafka)
		if err != nil {
			for _, opened := range pubs {
				opened.Close()
			}
			return nil, err
		}
		pubs = append(pubs, p)
	}
	return pubs, nil
}
