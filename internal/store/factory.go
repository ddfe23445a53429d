// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Backend names accepted by Open.
const (
	BackendSqlite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Dir       string // data directory; required for every backend but memory
	RedisAddr string
	Logger    zerolog.Logger
}

// Open creates a record store for the configured backend.
func Open(ctx context.Context, opts Options) (RecordStore, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendSqlite
	}

	if backend != BackendMemory {
		if opts.Dir == "" {
			return nil, fmt.Errorf("%s backend requires a data directory", backend)
		}
		if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
			return nil, unavailable("create data dir", err)
		}
	}

	switch backend {
	case BackendSqlite:
		s, err := NewSqliteStore(ctx, filepath.Join(opts.Dir, SqliteFile), opts.Dir)
		if err != nil {
			return nil, err
		}
		if issues, err := s.Verify(ctx); err != nil {
			opts.Logger.Warn().Err(err).Msg("sqlite integrity check failed to run")
		} else if len(issues) > 0 {
			opts.Logger.Error().Strs("issues", issues).Msg("sqlite integrity check reported problems")
		}
		return s, nil
	case BackendBadger:
		return OpenBadgerStore(filepath.Join(opts.Dir, BadgerDir), opts.Dir)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend requires store.redisAddr")
		}
		return NewRedisStore(ctx, RedisConfig{Addr: opts.RedisAddr}, opts.Dir, opts.Logger)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown record store backend: %s (supported: sqlite, badger, redis, memory)", backend)
	}
}
