// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package audio fetches sound files from the primary mirror, falling back
// to the upstream gallery for sounds the mirror does not have yet.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/cache"
	"github.com/LeeDigitalWorks/lockchime/pkg/catalog"
	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
)

var (
	ErrInvalidName = errors.New("invalid filename")
	ErrNotFound    = errors.New("audio file not found")
)

// Source names reported in the X-Source header.
const (
	SourcePrimary  = "github"
	SourceFallback = "notateslaapp"
)

const (
	ContentType = "audio/wav"

	cacheControlPrimary  = "public, max-age=31536000, immutable"
	cacheControlFallback = "public, max-age=86400"

	maxFileBytes = 16 << 20
)

// DefaultFallbackDirs are tried in order under the fallback base, followed
// by the base directory itself.
var DefaultFallbackDirs = []string{"cartoons", "video-games", "shows-movies", "retro", "others"}

// Config holds audio proxy settings.
type Config struct {
	// PrimaryURL is the base URL of the mirrored sound files.
	PrimaryURL string `mapstructure:"audio_primary_url"`

	// FallbackURL is the upstream audio directory.
	FallbackURL string `mapstructure:"audio_fallback_url"`

	// FallbackDirs are category directories tried under FallbackURL.
	FallbackDirs []string `mapstructure:"audio_fallback_dirs"`

	// Timeout bounds each upstream attempt. Default: 15 seconds.
	Timeout time.Duration `mapstructure:"audio_timeout"`

	// CacheEntries bounds the in-memory file cache. 0 disables it.
	CacheEntries int `mapstructure:"audio_cache_entries"`

	// CacheTTL is how long a cached file is served. Default: 24 hours.
	CacheTTL time.Duration `mapstructure:"audio_cache_ttl"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		PrimaryURL:   "https://raw.githubusercontent.com/rvwrh29585-eng/teslausbloader/main/sounds",
		FallbackURL:  "https://www.notateslaapp.com/assets/audio",
		FallbackDirs: DefaultFallbackDirs,
		Timeout:      15 * time.Second,
		CacheEntries: 64,
		CacheTTL:     24 * time.Hour,
	}
}

// Validate applies defaults for out-of-range values.
func (c *Config) Validate() error {
	if c.PrimaryURL == "" && c.FallbackURL == "" {
		return fmt.Errorf("audio_primary_url or audio_fallback_url is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 24 * time.Hour
	}
	c.PrimaryURL = strings.TrimRight(c.PrimaryURL, "/")
	c.FallbackURL = strings.TrimRight(c.FallbackURL, "/")
	return nil
}

// File is a resolved sound file.
type File struct {
	Name   string
	Data   []byte
	Source string
}

// CacheControl returns the Cache-Control value for the file's source.
func (f *File) CacheControl() string {
	if f.Source == SourcePrimary {
		return cacheControlPrimary
	}
	return cacheControlFallback
}

// NormalizeName validates a requested file name and ensures it ends in .wav.
func NormalizeName(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || strings.Contains(name, "/") {
		return "", ErrInvalidName
	}
	if !strings.HasSuffix(name, ".wav") {
		name += ".wav"
	}
	return name, nil
}

// Resolver looks up sound files across the configured mirrors.
type Resolver struct {
	cfg        Config
	httpClient *http.Client
	cache      *cache.Cache[string, *File]
}

// NewResolver creates a Resolver.
func NewResolver(cfg Config, httpClient *http.Client) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	r := &Resolver{cfg: cfg, httpClient: httpClient}
	if cfg.CacheEntries > 0 {
		r.cache = cache.New(
			cache.WithMaxSize[string, *File](cfg.CacheEntries),
			cache.WithExpiry[string, *File](cfg.CacheTTL),
			cache.WithLoadFunc(r.resolve),
		)
	}
	return r, nil
}

// candidates returns every URL to try for name, in order.
func (r *Resolver) candidates(name string) []candidate {
	var out []candidate
	if r.cfg.PrimaryURL != "" {
		out = append(out, candidate{
			url:    r.cfg.PrimaryURL + "/" + url.PathEscape(name),
			source: SourcePrimary,
		})
	}
	if r.cfg.FallbackURL != "" {
		base := url.PathEscape(strings.TrimSuffix(name, ".wav"))
		for _, dir := range r.cfg.FallbackDirs {
			out = append(out, candidate{
				url:    r.cfg.FallbackURL + "/" + dir + "/" + base + ".wav",
				source: SourceFallback,
			})
		}
		out = append(out, candidate{
			url:    r.cfg.FallbackURL + "/" + base + ".wav",
			source: SourceFallback,
		})
	}
	return out
}

type candidate struct {
	url    string
	source string
}

// Fetch returns the named file from the first mirror that has it.
func (r *Resolver) Fetch(ctx context.Context, name string) (*File, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		return r.cache.Load(ctx, name)
	}
	return r.resolve(ctx, name)
}

func (r *Resolver) resolve(ctx context.Context, name string) (*File, error) {
	for _, c := range r.candidates(name) {
		data, err := r.get(ctx, c)
		if err != nil {
			FetchesTotal.WithLabelValues(c.source, "miss").Inc()
			logger.Debug().Err(err).Str("url", c.url).Msg("audio candidate failed")
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		FetchesTotal.WithLabelValues(c.source, "hit").Inc()
		return &File{Name: name, Data: data, Source: c.source}, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

func (r *Resolver) get(ctx context.Context, c candidate) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	if c.source == SourceFallback {
		req.Header.Set("User-Agent", catalog.UserAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFileBytes {
		return nil, fmt.Errorf("file larger than %d bytes", maxFileBytes)
	}
	return data, nil
}
