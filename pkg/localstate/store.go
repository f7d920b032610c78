// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

// Package localstate persists small per-device values: the personal
// counter mirror and the view-mode preference. Nothing stored here is ever
// sent to the shared counter store.
package localstate

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("localstate: key not found")

// Store is a byte-oriented key/value store.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// GetJSON decodes the value at key into v. A missing key returns
// ErrNotFound and leaves v untouched.
func GetJSON(s Store, key string, v any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// PutJSON encodes v and stores it at key.
func PutJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(key, data)
}
