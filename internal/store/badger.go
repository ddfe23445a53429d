// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"context"
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// BadgerDir is the badger directory name inside the data directory.
const BadgerDir = "badger"

const (
	badgerSessionPrefix = "session:"
	badgerSettingPrefix = "setting:"
	badgerFirstKey      = "meta:first_session_date"
)

// BadgerStore implements RecordStore on an embedded badger database. Badger
// holds an exclusive lock on its directory, so only one process may open it.
type BadgerStore struct {
	db *badger.DB
	id *identity
}

// OpenBadgerStore opens the database at path. The device id file lives in idDir.
func OpenBadgerStore(path, idDir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, unavailable("open badger", err)
	}
	return &BadgerStore{db: db, id: newIdentity(idDir)}, nil
}

func (s *BadgerStore) All(_ context.Context) (map[string]Document, error) {
	out := make(map[string]Document)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(badgerSessionPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[strings.TrimPrefix(string(item.Key()), badgerSessionPrefix)] = Document(val)
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("list sessions", err)
	}
	return out, nil
}

func (s *BadgerStore) Save(_ context.Context, key string, doc Document) error {
	if err := ValidateDocument(doc); err != nil {
		return err
	}
	buf := cloneDocument(doc)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerSessionPrefix+key), buf)
	})
	if err != nil {
		return unavailable("save session", err)
	}
	return nil
}

func (s *BadgerStore) Has(_ context.Context, key string) (bool, error) {
	_, ok, err := s.get(badgerSessionPrefix + key)
	if err != nil {
		return false, unavailable("lookup session", err)
	}
	return ok, nil
}

func (s *BadgerStore) FirstSessionDate(_ context.Context) (string, bool, error) {
	v, ok, err := s.get(badgerFirstKey)
	if err != nil {
		return "", false, unavailable("read first session date", err)
	}
	return v, ok, nil
}

func (s *BadgerStore) SetFirstSessionDate(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(badgerFirstKey))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set([]byte(badgerFirstKey), []byte(key))
	})
	if err != nil {
		return unavailable("set first session date", err)
	}
	return nil
}

func (s *BadgerStore) Setting(_ context.Context, key string) (string, bool, error) {
	v, ok, err := s.get(badgerSettingPrefix + key)
	if err != nil {
		return "", false, unavailable("read setting", err)
	}
	return v, ok, nil
}

func (s *BadgerStore) SetSetting(_ context.Context, key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerSettingPrefix+key), []byte(value))
	})
	if err != nil {
		return unavailable("set setting", err)
	}
	return nil
}

func (s *BadgerStore) get(key string) (string, bool, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(out), true, nil
}

func (s *BadgerStore) DeviceID(_ context.Context) (string, error) {
	return s.id.get()
}

func (s *BadgerStore) Close() error { return s.db.Close() }
