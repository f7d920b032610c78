// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"github.com/LeeDigitalWorks/lockchime/pkg/debug"

	"github.com/prometheus/client_golang/prometheus"
)

// FetchesTotal counts upstream attempts by source and result.
var FetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "lockchime",
	Subsystem: "audio",
	Name:      "upstream_fetches_total",
	Help:      "Upstream audio fetch attempts",
}, []string{"source", "result"}) // result: "hit", "miss"

func init() {
	debug.Registry().MustRegister(FetchesTotal)
}
