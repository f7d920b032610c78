// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package api serves the public HTTP surface: the stats read and write
// endpoints plus the sound catalog and audio proxy.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/LeeDigitalWorks/lockchime/pkg/audio"
	"github.com/LeeDigitalWorks/lockchime/pkg/catalog"
	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"
	"github.com/LeeDigitalWorks/lockchime/pkg/utils"
)

// Server holds the handlers' dependencies. Catalog and Audio are optional;
// their routes are only registered when set.
type Server struct {
	stats   *stats.Service
	catalog *catalog.Catalog
	audio   *audio.Resolver
	limiter *ipLimiter
	proxies utils.TrustedProxies
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCatalog enables GET /api/sounds.
func WithCatalog(c *catalog.Catalog) ServerOption {
	return func(s *Server) {
		s.catalog = c
	}
}

// WithAudio enables GET /api/audio/{file}.
func WithAudio(r *audio.Resolver) ServerOption {
	return func(s *Server) {
		s.audio = r
	}
}

// NewServer creates a Server. The write endpoint is rate limited per client
// IP using cfg.RateLimitRPS and cfg.RateLimitBurst. Invalid entries in
// cfg.TrustedProxies are logged and ignored.
func NewServer(cfg stats.Config, svc *stats.Service, opts ...ServerOption) *Server {
	proxies, err := utils.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Warn().Err(err).Msg("ignoring invalid trusted proxies")
	}
	s := &Server{
		stats:   svc,
		limiter: newIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		proxies: proxies,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return withRequestLogging(withCORS(mux))
}

// RegisterRoutes registers the API routes on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stats", s.getStats)
	mux.HandleFunc("POST /api/stats", s.limit(s.postStats))
	if s.catalog != nil {
		mux.HandleFunc("GET /api/sounds", s.getSounds)
	}
	if s.audio != nil {
		mux.HandleFunc("GET /api/audio/{file}", s.getAudio)
	}
}

func writeJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, map[string]string{"error": message}, status)
}
