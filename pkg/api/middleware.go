// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// withCORS sets permissive CORS headers and answers preflight requests.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter captures the response status for logging.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// withRequestLogging attaches a request-scoped logger carrying the request
// id and logs each request when it completes.
func withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		l := logger.With().Str("request_id", reqID).Logger()
		r = r.WithContext(logger.WithLogger(r.Context(), &l))

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

		l.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Int("bytes", sw.bytes).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// ipLimiter keeps one token bucket per client IP. Buckets idle for longer
// than idleTTL are pruned.
type ipLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	buckets   map[string]*ipBucket
	lastPrune time.Time
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const idleTTL = 10 * time.Minute

// newIPLimiter returns nil when rps <= 0, which disables limiting.
func newIPLimiter(rps float64, burst int) *ipLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		buckets: make(map[string]*ipBucket),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	if l == nil {
		return true
	}
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > idleTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > idleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastPrune = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// limit wraps h with the per-IP write limiter.
func (s *Server) limit(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := utils.ClientIP(r, s.proxies)
		if !s.limiter.allow(ip) {
			RateLimitedTotal.Inc()
			logger.Ctx(r.Context()).Debug().Str("ip", ip).Msg("rate limited")
			writeJSONError(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		h(w, r)
	}
}
