// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import "context"

// Store persists the single Snapshot.
//
// Each call is atomic on its own but a Read followed by a Write is not:
// there is no compare-and-swap or versioning, and the last Write wins.
// Implementations live in pkg/counterstore.
type Store interface {
	// Read returns the stored snapshot, or an empty one if none exists yet.
	// Absence is never an error.
	Read(ctx context.Context) (*Snapshot, error)

	// Write replaces the stored snapshot.
	Write(ctx context.Context, snapshot *Snapshot) error
}
