// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import "time"

// Config holds aggregation service settings.
type Config struct {
	// SampleRate is the probability that a play event is recorded.
	// Recorded plays are weighted by round(1/SampleRate). 1 disables sampling.
	// Default: 0.2.
	SampleRate float64 `mapstructure:"sample_rate"`

	// RateLimitRPS caps write requests per client IP. <= 0 disables it.
	// Default: 5.
	RateLimitRPS float64 `mapstructure:"rate_limit_rps"`

	// RateLimitBurst is the per-IP burst allowance.
	// Default: 20.
	RateLimitBurst int `mapstructure:"rate_limit_burst"`

	// TrustedProxies lists CIDRs or IPs of reverse proxies whose
	// X-Forwarded-For and X-Real-IP headers identify the client for rate
	// limiting. Empty means the TCP peer address is always used.
	TrustedProxies []string `mapstructure:"trusted_proxies"`

	// StoreTimeout bounds each store read and write.
	// Default: 5 seconds.
	StoreTimeout time.Duration `mapstructure:"store_timeout"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		SampleRate:     0.2,
		RateLimitRPS:   5,
		RateLimitBurst: 20,
		StoreTimeout:   5 * time.Second,
	}
}

// Validate applies defaults for out-of-range values.
func (c *Config) Validate() {
	if c.SampleRate <= 0 || c.SampleRate > 1 {
		c.SampleRate = 0.2
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 20
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 5 * time.Second
	}
}
