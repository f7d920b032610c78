// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	c := New[string, int]()

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := New(WithExpiry[string, string](100 * time.Millisecond))
		c.Set("key1", "value1")

		time.Sleep(50 * time.Millisecond)
		_, ok := c.Get("key1")
		assert.True(t, ok)

		// Access does not extend the TTL.
		time.Sleep(60 * time.Millisecond)
		_, ok = c.Get("key1")
		assert.False(t, ok, "entry should be expired")
	})
}

func TestCache_MaxSizeEvictsLeastRecentlyUsed(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := New(WithMaxSize[string, int](2))
		c.Set("a", 1)
		time.Sleep(time.Millisecond)
		c.Set("b", 2)
		time.Sleep(time.Millisecond)
		c.Get("a")
		time.Sleep(time.Millisecond)
		c.Set("c", 3)

		assert.Equal(t, 2, c.Len())
		_, ok := c.Get("b")
		assert.False(t, ok)
		_, ok = c.Get("a")
		assert.True(t, ok)
	})
}

func TestCache_LoadDeduplicatesConcurrentMisses(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c := New(WithLoadFunc(func(ctx context.Context, key string) (string, error) {
		calls.Add(1)
		<-release
		return "v:" + key, nil
	}))

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Load(context.Background(), "k")
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, "v:k", v)
	}

	// Cached now.
	_, err := c.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCache_LoadSurvivesFirstCallerCancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls atomic.Int32
		release := make(chan struct{})
		var loadErr error
		c := New(WithLoadFunc(func(ctx context.Context, key string) (string, error) {
			calls.Add(1)
			<-release
			loadErr = ctx.Err()
			return "v:" + key, nil
		}))

		ctx, cancel := context.WithCancel(context.Background())
		var firstErr error
		firstDone := make(chan struct{})
		go func() {
			defer close(firstDone)
			_, firstErr = c.Load(ctx, "k")
		}()
		synctest.Wait()

		var (
			second    string
			secondErr error
		)
		secondDone := make(chan struct{})
		go func() {
			defer close(secondDone)
			second, secondErr = c.Load(context.Background(), "k")
		}()
		synctest.Wait()

		cancel()
		<-firstDone
		assert.ErrorIs(t, firstErr, context.Canceled)

		close(release)
		<-secondDone
		require.NoError(t, secondErr)
		assert.Equal(t, "v:k", second)
		assert.NoError(t, loadErr, "shared load must not see the first caller's cancel")
		assert.Equal(t, int32(1), calls.Load())

		v, ok := c.Get("k")
		assert.True(t, ok)
		assert.Equal(t, "v:k", v)
	})
}

func TestCache_LoadError(t *testing.T) {
	c := New(WithLoadFunc(func(ctx context.Context, key string) (int, error) {
		return 0, errors.New("upstream down")
	}))

	_, err := c.Load(context.Background(), "k")
	assert.EqualError(t, err, "upstream down")
	assert.Equal(t, 0, c.Len())
}

func TestCache_StaleOnError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fail := false
		c := New(
			WithExpiry[string, int](time.Minute),
			WithStaleOnError[string, int](),
			WithLoadFunc(func(ctx context.Context, key string) (int, error) {
				if fail {
					return 0, errors.New("upstream down")
				}
				return 7, nil
			}),
		)

		v, err := c.Load(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, 7, v)

		fail = true
		time.Sleep(2 * time.Minute)
		v, err = c.Load(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})
}

func TestCache_LoadWithoutFunc(t *testing.T) {
	c := New[string, int]()
	_, err := c.Load(context.Background(), "k")
	assert.Error(t, err)
}
