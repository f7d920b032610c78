// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisPublisher_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewRedisPublisher(RedisConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis address is required")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisPublisher(RedisConfig{Addr: addr, DialTimeout: 100 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestRedisPublisher_Publish(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	pub, err := NewRedisPublisher(RedisConfig{
		Addr:        mr.Addr(),
		Channel:     "lockchime:events",
		DialTimeout: time.Second,
	})
	require.NoError(t, err)
	defer pub.Close()

	assert.Equal(t, "redis", pub.Name())
	assert.Equal(t, "lockchime:events:chime_bell", pub.Channel("chime_bell"))

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps := sub.PSubscribe(ctx, "lockchime:events:*")
	defer ps.Close()
	_, err = ps.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, "chime_bell", []byte(`{"soundId":"chime_bell"}`)))

	msg, err := ps.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "lockchime:events:chime_bell", msg.Channel)
	assert.JSONEq(t, `{"soundId":"chime_bell"}`, msg.Payload)
}

func TestRedisPublisher_DefaultChannel(t *testing.T) {
	t.Parallel()

	pub := NewRedisPublisherWithClient(nil, "")
	assert.Equal(t, "lockchime:events:x", pub.Channel("x"))
	assert.NoError(t, pub.Close())
}
