// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package counterstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LeeDigitalWorks/lockchime/pkg/compression"
	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/stats"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis-backed counter store.
type RedisConfig struct {
	// Addr is the Redis server address (e.g., "localhost:6379").
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`

	// Key names the single snapshot record.
	// Default: "stats:_all".
	Key string `mapstructure:"key"`

	// KeyPrefix is prepended to Key, for sharing a database.
	KeyPrefix string `mapstructure:"key_prefix"`

	// Compression is applied to written snapshots: "none", "zstd", "s2" or
	// "lz4". Reads detect the format, so it can be changed at any time.
	Compression string `mapstructure:"compression"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DefaultRedisConfig returns a RedisConfig with sensible defaults.
func DefaultRedisConfig(addr string) RedisConfig {
	return RedisConfig{
		Addr:         addr,
		PoolSize:     10,
		Key:          "stats:_all",
		KeyPrefix:    "lockchime:",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RedisStore stores the snapshot as one JSON string. GET and SET are each
// atomic; nothing guards the gap between them.
type RedisStore struct {
	client *redis.Client
	key    string
	algo   compression.Algorithm
}

var _ stats.Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	s := NewRedisStoreWithClient(client, cfg)
	logger.Info().
		Str("addr", cfg.Addr).
		Str("key", s.key).
		Msg("redis counter store connected")
	return s, nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, cfg RedisConfig) *RedisStore {
	key := cfg.Key
	if key == "" {
		key = "stats:_all"
	}
	return &RedisStore{
		client: client,
		key:    cfg.KeyPrefix + key,
		algo:   compression.ParseAlgorithm(cfg.Compression),
	}
}

func (s *RedisStore) Read(ctx context.Context) (*stats.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return stats.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	data, _, err = compression.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}

	snap := stats.NewSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.Normalize()
	return snap, nil
}

func (s *RedisStore) Write(ctx context.Context, snap *stats.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if data, err = compression.Encode(s.algo, data); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Ping reports whether Redis answers; used as a readiness check.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
