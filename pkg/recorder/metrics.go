// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package recorder

import (
	"github.com/LeeDigitalWorks/lockchime/pkg/debug"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EventsSentTotal counts events delivered to the aggregation service.
	EventsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lockchime",
		Subsystem: "recorder",
		Name:      "sent_total",
		Help:      "Stats events delivered to the aggregation service",
	})

	// EventsDroppedTotal counts events that were not delivered.
	EventsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lockchime",
		Subsystem: "recorder",
		Name:      "dropped_total",
		Help:      "Stats events dropped without delivery",
	}, []string{"reason"}) // reason: "send_failed", "closed"

	// EventsDedupedTotal counts events kept out of the queue by session dedup.
	EventsDedupedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lockchime",
		Subsystem: "recorder",
		Name:      "deduped_total",
		Help:      "Plays and downloads suppressed by session dedup",
	}, []string{"event"})

	// QueueDepth is the number of events waiting for the next drain.
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "lockchime",
		Subsystem: "recorder",
		Name:      "queue_depth",
		Help:      "Stats events waiting to be sent",
	})
)

func init() {
	debug.Registry().MustRegister(
		EventsSentTotal,
		EventsDroppedTotal,
		EventsDedupedTotal,
		QueueDepth,
	)
}
