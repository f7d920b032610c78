// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/LeeDigitalWorks/lockchime/pkg/audio"
	"github.com/LeeDigitalWorks/lockchime/pkg/catalog"
	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
)

// getSounds handles GET /api/sounds.
func (s *Server) getSounds(w http.ResponseWriter, r *http.Request) {
	sounds, err := s.catalog.Sounds(r.Context())
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("failed to fetch sounds")
		writeJSON(w, map[string]string{
			"error":   "Failed to fetch sounds",
			"message": err.Error(),
		}, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeJSON(w, struct {
		Sounds []catalog.Sound `json:"sounds"`
	}{Sounds: sounds}, http.StatusOK)
}

// getAudio handles GET /api/audio/{file}.
func (s *Server) getAudio(w http.ResponseWriter, r *http.Request) {
	f, err := s.audio.Fetch(r.Context(), r.PathValue("file"))
	switch {
	case errors.Is(err, audio.ErrInvalidName):
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return
	case errors.Is(err, audio.ErrNotFound):
		http.Error(w, "Audio file not found", http.StatusNotFound)
		return
	case err != nil:
		logger.Ctx(r.Context()).Warn().Err(err).Str("file", r.PathValue("file")).Msg("failed to fetch audio")
		http.Error(w, "Audio file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.Header().Set("Cache-Control", f.CacheControl())
	w.Header().Set("X-Source", f.Source)
	w.WriteHeader(http.StatusOK)
	w.Write(f.Data)
}
