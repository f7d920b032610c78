// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"github.com/LeeDigitalWorks/lockchime/pkg/debug"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EventsPublishedTotal counts deliveries by publisher and result.
	EventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lockchime",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Stats events delivered to publishers",
	}, []string{"publisher", "result"}) // result: "ok", "error"

	// EventsDroppedTotal counts events dropped before delivery.
	EventsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lockchime",
		Subsystem: "events",
		Name:      "dropped_total",
		Help:      "Stats events dropped before delivery",
	}, []string{"reason"}) // reason: "full", "stopped", "marshal"

	// EventsDeliveryDuration tracks delivery latency by publisher.
	EventsDeliveryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lockchime",
		Subsystem: "events",
		Name:      "delivery_duration_seconds",
		Help:      "Time spent delivering events to publishers",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"publisher"})

	// EventsQueueDepth tracks events waiting for the worker.
	EventsQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "lockchime",
		Subsystem: "events",
		Name:      "queue_depth",
		Help:      "Current number of events pending delivery",
	})
)

func init() {
	debug.Registry().MustRegister(
		EventsPublishedTotal,
		EventsDroppedTotal,
		EventsDeliveryDuration,
		EventsQueueDepth,
	)
}
