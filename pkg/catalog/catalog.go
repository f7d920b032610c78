// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog lists the available lock sounds by scraping the upstream
// sound gallery page.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/cache"
	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"
)

// UserAgent is sent on every upstream request.
const UserAgent = "Mozilla/5.0 (compatible; TeslaLockSoundLoader/1.0)"

const (
	cacheKey     = "sounds"
	maxPageBytes = 8 << 20
)

var soundHref = regexp.MustCompile(`href="(/assets/audio/[^"]+\.wav)"`)

// Sound is one catalog entry.
type Sound struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	URL      string `json:"url"`
}

// Config holds catalog settings.
type Config struct {
	// URL is the upstream gallery page.
	URL string `mapstructure:"catalog_url"`

	// TTL is how long a scrape is served before refetching. Default: 1 hour.
	TTL time.Duration `mapstructure:"catalog_ttl"`

	// Timeout bounds one upstream fetch. Default: 15 seconds.
	Timeout time.Duration `mapstructure:"catalog_timeout"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		URL:     "https://www.notateslaapp.com/tesla-custom-lock-sounds/",
		TTL:     time.Hour,
		Timeout: 15 * time.Second,
	}
}

// Validate applies defaults for out-of-range values.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("catalog_url is required")
	}
	if c.TTL <= 0 {
		c.TTL = time.Hour
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return nil
}

// Parse extracts sounds from the gallery HTML. Entries are deduplicated by
// name and sorted.
func Parse(html []byte) []Sound {
	seen := make(map[string]struct{})
	sounds := []Sound{}
	for _, m := range soundHref.FindAllSubmatch(html, -1) {
		name := strings.TrimSuffix(path.Base(string(m[1])), ".wav")
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		sounds = append(sounds, Sound{
			Name:     name,
			Category: stats.Category(name),
			URL:      "/api/audio/" + url.PathEscape(name) + ".wav",
		})
	}
	slices.SortFunc(sounds, func(a, b Sound) int {
		return strings.Compare(a.Name, b.Name)
	})
	return sounds
}

// Catalog serves the sound list, refetching at most once per TTL.
type Catalog struct {
	cfg        Config
	httpClient *http.Client
	cache      *cache.Cache[string, []Sound]
}

// New creates a Catalog.
func New(cfg Config, httpClient *http.Client) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	c := &Catalog{cfg: cfg, httpClient: httpClient}
	c.cache = cache.New(
		cache.WithExpiry[string, []Sound](cfg.TTL),
		cache.WithStaleOnError[string, []Sound](),
		cache.WithLoadFunc(func(ctx context.Context, _ string) ([]Sound, error) {
			return c.fetch(ctx)
		}),
	)
	return c, nil
}

// Sounds returns the current catalog. If a refetch fails after a successful
// one, the previous list is served.
func (c *Catalog) Sounds(ctx context.Context) ([]Sound, error) {
	return c.cache.Load(ctx, cacheKey)
}

func (c *Catalog) fetch(ctx context.Context) ([]Sound, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: upstream returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	sounds := Parse(body)
	logger.Info().
		Int("sounds", len(sounds)).
		Dur("duration", time.Since(start)).
		Msg("catalog refreshed")
	return sounds, nil
}
