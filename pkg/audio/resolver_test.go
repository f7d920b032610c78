// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/LeeDigitalWorks/lockchime/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upstream serves files at fixed paths and records every path requested.
type upstream struct {
	mu    sync.Mutex
	paths []string
	files map[string]string
	ua    map[string]string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.paths = append(u.paths, r.URL.Path)
	u.ua[r.URL.Path] = r.Header.Get("User-Agent")
	u.mu.Unlock()

	body, ok := u.files[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte(body))
}

func (u *upstream) requested() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.paths...)
}

func newTestResolver(t *testing.T, files map[string]string, cacheEntries int) (*Resolver, *upstream) {
	t.Helper()
	up := &upstream{files: files, ua: map[string]string{}}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.PrimaryURL = srv.URL + "/sounds"
	cfg.FallbackURL = srv.URL + "/assets/audio"
	cfg.CacheEntries = cacheEntries

	r, err := NewResolver(cfg, srv.Client())
	require.NoError(t, err)
	return r, up
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "chime.wav", want: "chime.wav"},
		{in: "chime", want: "chime.wav"},
		{in: "", wantErr: true},
		{in: "../etc/passwd", wantErr: true},
		{in: "a..b.wav", wantErr: true},
		{in: "dir/chime.wav", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeName(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_PrimaryFirst(t *testing.T) {
	r, up := newTestResolver(t, map[string]string{
		"/sounds/chime.wav":              "primary",
		"/assets/audio/others/chime.wav": "fallback",
	}, 0)

	f, err := r.Fetch(context.Background(), "chime")
	require.NoError(t, err)
	assert.Equal(t, "primary", string(f.Data))
	assert.Equal(t, SourcePrimary, f.Source)
	assert.Equal(t, "public, max-age=31536000, immutable", f.CacheControl())
	assert.Equal(t, []string{"/sounds/chime.wav"}, up.requested())
}

func TestResolver_FallbackOrder(t *testing.T) {
	r, up := newTestResolver(t, map[string]string{
		"/assets/audio/retro/arcade_blip.wav":  "retro",
		"/assets/audio/others/arcade_blip.wav": "others",
	}, 0)

	f, err := r.Fetch(context.Background(), "arcade_blip.wav")
	require.NoError(t, err)
	assert.Equal(t, "retro", string(f.Data))
	assert.Equal(t, SourceFallback, f.Source)
	assert.Equal(t, "public, max-age=86400", f.CacheControl())
	assert.Equal(t, []string{
		"/sounds/arcade_blip.wav",
		"/assets/audio/cartoons/arcade_blip.wav",
		"/assets/audio/video-games/arcade_blip.wav",
		"/assets/audio/shows-movies/arcade_blip.wav",
		"/assets/audio/retro/arcade_blip.wav",
	}, up.requested())
	assert.Equal(t, catalog.UserAgent, up.ua["/assets/audio/retro/arcade_blip.wav"])
}

func TestResolver_BaseDirectoryLast(t *testing.T) {
	r, up := newTestResolver(t, map[string]string{
		"/assets/audio/chime.wav": "base",
	}, 0)

	f, err := r.Fetch(context.Background(), "chime.wav")
	require.NoError(t, err)
	assert.Equal(t, "base", string(f.Data))
	assert.Len(t, up.requested(), 7)
}

func TestResolver_EscapesNameInEveryCandidate(t *testing.T) {
	r, up := newTestResolver(t, map[string]string{
		"/assets/audio/retro/odd?name #1.wav": "retro",
	}, 0)

	f, err := r.Fetch(context.Background(), "odd?name #1")
	require.NoError(t, err)
	assert.Equal(t, "retro", string(f.Data))

	paths := up.requested()
	require.Len(t, paths, 5)
	for _, p := range paths {
		assert.True(t, strings.HasSuffix(p, "/odd?name #1.wav"), p)
	}
}

func TestResolver_NotFound(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{}, 0)

	_, err := r.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_InvalidName(t *testing.T) {
	r, up := newTestResolver(t, map[string]string{}, 0)

	_, err := r.Fetch(context.Background(), "../secret")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Empty(t, up.requested())
}

func TestResolver_Cache(t *testing.T) {
	r, up := newTestResolver(t, map[string]string{
		"/sounds/chime.wav": "primary",
	}, 4)

	for range 3 {
		f, err := r.Fetch(context.Background(), "chime")
		require.NoError(t, err)
		assert.Equal(t, "primary", string(f.Data))
	}
	assert.Len(t, up.requested(), 1)
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	assert.Error(t, cfg.Validate())

	cfg = Config{PrimaryURL: "http://x/"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://x", cfg.PrimaryURL)
}
