// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package events fans recorded stats events out to Redis Pub/Sub and
// Kafka so other services can follow sound activity live.
//
// Delivery is best effort. The emitter buffers in memory and drops when
// full; nothing is retried or persisted.
package events

import (
	"time"
)

// Config holds event notification configuration.
type Config struct {
	// Enabled controls whether recorded events are published.
	Enabled bool `mapstructure:"enabled"`

	// BufferSize bounds the in-memory queue (default: 1024).
	BufferSize int `mapstructure:"buffer_size"`

	// PublishTimeout bounds one delivery to one publisher (default: 5s).
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`

	Redis RedisConfig `mapstructure:"redis"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

// RedisConfig holds Redis publisher settings.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Channel is the channel prefix. Events go to "{channel}:{sound id}"
	// (default: "lockchime:events").
	Channel string `mapstructure:"channel"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka publisher settings.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`

	// Topic is the Kafka topic for events (default: "lockchime-stats").
	Topic string `mapstructure:"topic"`

	// RequiredAcks: 0=none, 1=leader, -1=all (default: 1).
	RequiredAcks int `mapstructure:"required_acks"`

	// Compression: "none", "gzip", "snappy", "lz4", "zstd" (default: "snappy").
	Compression string `mapstructure:"compression"`

	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	TLS           bool `mapstructure:"tls"`
	TLSSkipVerify bool `mapstructure:"tls_skip_verify"`

	// SASLMechanism is "", "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512".
	// Empty disables SASL.
	SASLMechanism string `mapstructure:"sasl_mechanism"`
	SASLUsername  string `mapstructure:"sasl_username"`
	SASLPassword  string `mapstructure:"sasl_password"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BufferSize:     1024,
		PublishTimeout: 5 * time.Second,
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			Channel:      "lockchime:events",
			DialTimeout:  5 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic:        "lockchime-stats",
			RequiredAcks: 1,
			Compression:  "snappy",
			BatchSize:    100,
			BatchTimeout: time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Validate applies defaults for missing or invalid values.
func (c *Config) Validate() {
	def := DefaultConfig()
	if c.BufferSize <= 0 {
		c.BufferSize = def.BufferSize
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = def.PublishTimeout
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = def.Redis.Addr
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = def.Redis.Channel
	}
	if c.Redis.DialTimeout <= 0 {
		c.Redis.DialTimeout = def.Redis.DialTimeout
	}
	if c.Redis.WriteTimeout <= 0 {
		c.Redis.WriteTimeout = def.Redis.WriteTimeout
	}

	if c.Kafka.Topic == "" {
		c.Kafka.Topic = def.Kafka.Topic
	}
	if c.Kafka.RequiredAcks < -1 || c.Kafka.RequiredAcks > 1 {
		c.Kafka.RequiredAcks = def.Kafka.RequiredAcks
	}
	if c.Kafka.Compression == "" {
		c.Kafka.Compression = def.Kafka.Compression
	}
	if c.Kafka.BatchSize <= 0 {
		c.Kafka.BatchSize = def.Kafka.BatchSize
	}
	if c.Kafka.BatchTimeout <= 0 {
		c.Kafka.BatchTimeout = def.Kafka.BatchTimeout
	}
	if c.Kafka.WriteTimeout <= 0 {
		c.Kafka.WriteTimeout = def.Kafka.WriteTimeout
	}
}

// HasPublishers returns true if at least one publisher is enabled.
func (c *Config) HasPublishers() bool {
	return c.Redis.Enabled || (c.Kafka.Enabled && len(c.Kafka.Brokers) > 0)
}
