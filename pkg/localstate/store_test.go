// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package localstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	ldb, err := OpenLevelDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ldb.Close() })

	return map[string]Store{
		"memory":  NewMemory(),
		"leveldb": ldb,
	}
}

func TestStore_GetPutDelete(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put("k", []byte("v1")))
			got, err := s.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), got)

			require.NoError(t, s.Put("k", []byte("v2")))
			got, err = s.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)

			require.NoError(t, s.Delete("k"))
			_, err = s.Get("k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_JSONHelpers(t *testing.T) {
	type pref struct {
		Mode string `json:"mode"`
	}

	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			var p pref
			assert.ErrorIs(t, GetJSON(s, "pref", &p), ErrNotFound)

			require.NoError(t, PutJSON(s, "pref", pref{Mode: "personal"}))
			require.NoError(t, GetJSON(s, "pref", &p))
			assert.Equal(t, "personal", p.Mode)

			require.NoError(t, s.Put("bad", []byte("{")))
			assert.Error(t, GetJSON(s, "bad", &p))
		})
	}
}

func TestLevelDB_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := OpenLevelDB(dir)
	require.NoError(t, err)
	require.NoError(t, db.Put("lockchime-stats-mode", []byte("personal")))
	require.NoError(t, db.Close())

	db, err = OpenLevelDB(dir)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Get("lockchime-stats-mode")
	require.NoError(t, err)
	assert.Equal(t, "personal", string(got))
}
