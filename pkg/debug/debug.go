// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package debug serves the operational side port: Prometheus metrics,
// liveness/readiness probes and pprof.
package debug

import (
	"net/http"
	"net/http/pprof"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ready atomic.Bool

	checksMu sync.RWMutex
	checks   = make(map[string]func() bool)

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(collectors.NewBuildInfoCollector())
}

func SetReady() {
	ready.Store(true)
}

func SetNotReady() {
	ready.Store(false)
}

// AddReadyCheck registers a named readiness check. IsReady reports true
// only after SetReady and while every registered check passes.
func AddReadyCheck(name string, check func() bool) {
	checksMu.Lock()
	defer checksMu.Unlock()
	checks[name] = check
}

// FailingChecks returns the names of readiness checks that currently fail.
func FailingChecks() []string {
	checksMu.RLock()
	defer checksMu.RUnlock()

	var failing []string
	for name, check := range checks {
		if !check() {
			failing = append(failing, name)
		}
	}
	return failing
}

func IsReady() bool {
	if !ready.Load() {
		return false
	}
	return len(FailingChecks()) == 0
}

// Registry returns the registerer used by package-level metrics.
// Everything registered here is exported on /metrics next to the Go
// runtime collectors.
func Registry() prometheus.Registerer {
	return registry
}

// Gatherer exposes the registry for tests.
func Gatherer() prometheus.Gatherer {
	return registry
}

func GetMux() *http.ServeMux {
	mux := http.NewServeMux()

	gatherers := prometheus.Gatherers{
		prometheus.DefaultGatherer,
		registry,
	}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
	mux.Handle("/debug/", http.HandlerFunc(pprof.Index))
	mux.Handle("/debug/heap/", pprof.Handler("heap"))
	mux.Handle("/debug/goroutine/", pprof.Handler("goroutine"))
	mux.Handle("/debug/profile", http.HandlerFunc(pprof.Profile))
	mux.Handle("/debug/trace", http.HandlerFunc(pprof.Trace))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	return mux
}
