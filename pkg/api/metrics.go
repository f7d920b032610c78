// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/LeeDigitalWorks/lockchime/pkg/debug"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lockchime",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lockchime",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lockchime",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Write requests rejected by the per-IP rate limiter",
	})
)

func init() {
	debug.Registry().MustRegister(RequestsTotal, RequestDuration, RateLimitedTotal)
}
