// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package counterstore provides stats.Store backends.
package counterstore

import (
	"context"
	"sync"

	"github.com/LeeDigitalWorks/lockchime/pkg/stats"
)

// MemoryStore keeps the snapshot in process. Reads and writes copy the
// snapshot so callers never share the stored map.
type MemoryStore struct {
	mu   sync.RWMutex
	snap *stats.Snapshot
}

var _ stats.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Read(ctx context.Context) (*stats.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Clone(), nil
}

func (m *MemoryStore) Write(ctx context.Context, snap *stats.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.Clone()
	return nil
}

// Reset drops the stored snapshot. Intended for tests.
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
}
