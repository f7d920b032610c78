// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"
)

const maxStatsBody = 4 << 10

type recordRequest struct {
	SoundID string `json:"soundId"`
	Event   string `json:"event"`
}

type recordResponse struct {
	Success bool                 `json:"success"`
	Sampled bool                 `json:"sampled,omitempty"`
	Stats   *stats.SoundCounters `json:"stats,omitempty"`
}

type soundResponse struct {
	SoundID string              `json:"soundId"`
	Stats   stats.SoundCounters `json:"stats"`
}

// getStats handles GET /api/stats and GET /api/stats?sound={id}.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if soundID := r.URL.Query().Get("sound"); soundID != "" {
		c, err := s.stats.SoundStats(ctx, soundID)
		if err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("sound", soundID).Msg("failed to fetch stats")
			writeJSONError(w, "Failed to fetch stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, soundResponse{SoundID: soundID, Stats: c}, http.StatusOK)
		return
	}

	ov, err := s.stats.Overview(ctx)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to fetch stats")
		writeJSONError(w, "Failed to fetch stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, ov, http.StatusOK)
}

// postStats handles POST /api/stats.
func (s *Server) postStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStatsBody)).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	event, ok := stats.ParseEventType(req.Event)
	if !ok || req.SoundID == "" {
		stats.EventsTotal.WithLabelValues("unknown", "invalid").Inc()
		writeJSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	res, err := s.stats.Record(ctx, req.SoundID, event)
	switch {
	case errors.Is(err, stats.ErrInvalidEvent):
		writeJSONError(w, "Invalid request", http.StatusBadRequest)
		return
	case err != nil:
		logger.Ctx(ctx).Error().
			Err(err).
			Str("sound", req.SoundID).
			Str("event", req.Event).
			Msg("failed to record stat")
		writeJSONError(w, "Failed to record stat", http.StatusInternalServerError)
		return
	}

	if res.Sampled {
		writeJSON(w, recordResponse{Success: true, Sampled: true}, http.StatusOK)
		return
	}
	writeJSON(w, recordResponse{Success: true, Stats: res.Stats}, http.StatusOK)
}
