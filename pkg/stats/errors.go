// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import "errors"

var (
	// ErrInvalidEvent is returned for an empty sound id or an unknown event.
	// Nothing is written.
	ErrInvalidEvent = errors.New("invalid stats event")

	// ErrStoreUnavailable wraps any failure of the counter store. The request
	// that hit it has failed and must not be retried.
	ErrStoreUnavailable = errors.New("counter store unavailable")
)
