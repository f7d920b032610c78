// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package localstate

import (
	"errors"

	"github.com/LeeDigitalWorks/lockchime/pkg/logger"
	"github.com/LeeDigitalWorks/lockchime/pkg/utils"

	"github.com/syndtr/goleveldb/leveldb"
	lverrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDB is a Store backed by a LevelDB directory. Writes are fsynced:
// values are tiny and a lost mirror update is user-visible.
type LevelDB struct {
	db        *leveldb.DB
	dir       string
	writeOpts *opt.WriteOptions
}

var _ Store = (*LevelDB)(nil)

// OpenLevelDB opens (or creates) the database in dir, recovering it if the
// manifest is corrupted.
func OpenLevelDB(dir string) (*LevelDB, error) {
	dir = utils.ResolvePath(dir)
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}

	db, err := leveldb.OpenFile(dir, nil)
	if lverrors.IsCorrupted(err) {
		logger.Warn().Err(err).Str("dir", dir).Msg("local state corrupted, recovering")
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, err
	}

	return &LevelDB{
		db:        db,
		dir:       dir,
		writeOpts: &opt.WriteOptions{Sync: true},
	}, nil
}

func (l *LevelDB) Get(key string) ([]byte, error) {
	data, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func (l *LevelDB) Put(key string, value []byte) error {
	return l.db.Put([]byte(key), value, l.writeOpts)
}

func (l *LevelDB) Delete(key string) error {
	return l.db.Delete([]byte(key), l.writeOpts)
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Dir returns the resolved database directory.
func (l *LevelDB) Dir() string {
	return l.dir
}
