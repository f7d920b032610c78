// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"fmt"

	"github.com/LeeDigitalWorks/lockchime/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes events to Redis Pub/Sub.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to Redis and verifies the connection.
func NewRedisPublisher(cfg RedisConfig) (*RedisPublisher, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Str("channel", cfg.Channel).
		Msg("redis event publisher connected")

	return NewRedisPublisherWithClient(client, cfg.Channel), nil
}

// NewRedisPublisherWithClient wraps an existing client. The publisher owns
// the client and closes it on Close.
func NewRedisPublisherWithClient(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultConfig().Redis.Channel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Name returns the publisher identifier.
func (p *RedisPublisher) Name() string {
	return "redis"
}

// Channel returns the channel events for soundID are published on.
// Subscribers wanting everything PSUBSCRIBE "{prefix}:*".
func (p *RedisPublisher) Channel(soundID string) string {
	return p.channel + ":" + soundID
}

// Publish sends an event to the sound's channel.
func (p *RedisPublisher) Publish(ctx context.Context, soundID string, data []byte) error {
	channel := p.Channel(soundID)
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}

	logger.Debug().
		Str("channel", channel).
		Int("size", len(data)).
		Msg("published event to redis")
	return nil
}

// Close closes the Redis client.
func (p *RedisPublisher) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
