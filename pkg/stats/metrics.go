// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"github.com/LeeDigitalWorks/lockchime/pkg/debug"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EventsTotal counts write requests by event and outcome.
	EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lockchime",
		Subsystem: "stats",
		Name:      "events_total",
		Help:      "Stats events received by the aggregation service",
	}, []string{"event", "outcome"}) // outcome: "recorded", "sampled", "invalid", "error"

	// StoreDuration tracks counter store latency.
	StoreDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lockchime",
		Subsystem: "stats",
		Name:      "store_duration_seconds",
		Help:      "Time spent in counter store reads and writes",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"op"})

	// StoreErrorsTotal counts failed store operations.
	StoreErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lockchime",
		Subsystem: "stats",
		Name:      "store_errors_total",
		Help:      "Counter store operations that failed",
	}, []string{"op"})

	// TrackedSounds is the number of sounds in the last snapshot read.
	TrackedSounds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "lockchime",
		Subsystem: "stats",
		Name:      "tracked_sounds",
		Help:      "Sounds present in the most recently read snapshot",
	})
)

func init() {
	debug.Registry().MustRegister(
		EventsTotal,
		StoreDuration,
		StoreErrorsTotal,
		TrackedSounds,
	)
}
