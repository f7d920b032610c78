// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package statsclient talks to the aggregation service over HTTP. A Client
// satisfies recorder.Sender and recorder.Fetcher.
package statsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/recorder"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"

	"github.com/google/uuid"
)

const statsPath = "/api/stats"

// Config holds the server location and transport settings.
type Config struct {
	BaseURL      string        `mapstructure:"server"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
}

// DefaultConfig returns a Config pointing at a local server.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:8080",
		Timeout:      10 * time.Second,
		MaxIdleConns: 10,
	}
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("stats server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("stats server returned %d: %s", e.StatusCode, e.Message)
}

// RecordResponse is the body of a successful write.
type RecordResponse struct {
	Success bool                 `json:"success"`
	Sampled bool                 `json:"sampled,omitempty"`
	Stats   *stats.SoundCounters `json:"stats,omitempty"`
}

// SoundResponse is the body of a single-sound read.
type SoundResponse struct {
	SoundID string              `json:"soundId"`
	Stats   stats.SoundCounters `json:"stats"`
}

// Client is safe for concurrent use.
type Client struct {
	base       string
	httpClient *http.Client
}

var (
	_ recorder.Sender  = (*Client)(nil)
	_ recorder.Fetcher = (*Client)(nil)
)

// New creates a Client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 10
	}
	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.MaxIdleConns,
				MaxIdleConnsPerHost: cfg.MaxIdleConns,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Record posts one event and returns the server's answer.
func (c *Client) Record(ctx context.Context, soundID string, event stats.EventType) (*RecordResponse, error) {
	body, err := json.Marshal(recorder.Event{SoundID: soundID, Event: event})
	if err != nil {
		return nil, err
	}
	var resp RecordResponse
	if err := c.do(ctx, http.MethodPost, statsPath, bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Send implements recorder.Sender.
func (c *Client) Send(ctx context.Context, ev recorder.Event) error {
	_, err := c.Record(ctx, ev.SoundID, ev.Event)
	return err
}

// Fetch implements recorder.Fetcher.
func (c *Client) Fetch(ctx context.Context) (*stats.Overview, error) {
	var ov stats.Overview
	if err := c.do(ctx, http.MethodGet, statsPath, nil, &ov); err != nil {
		return nil, err
	}
	if ov.Top == nil {
		ov.Top = make(map[string]stats.SoundCounters)
	}
	return &ov, nil
}

// SoundStats reads one sound's counters.
func (c *Client) SoundStats(ctx context.Context, soundID string) (stats.SoundCounters, error) {
	var resp SoundResponse
	path := statsPath + "?" + url.Values{"sound": {soundID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return stats.SoundCounters{}, err
	}
	return resp.Stats, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(data, &e)
		logger.Debug().
			Str("request_id", reqID).
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("stats request failed")
		return &StatusError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
