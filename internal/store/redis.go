// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	redisSessionsKey = "traindaily:sessions"
	redisSettingsKey = "traindaily:settings"
	redisFirstKey    = "traindaily:first_session_date"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // host:port
	Password string
	DB       int
}

// RedisStore implements RecordStore on a Redis server. Sessions and settings
// are hash fields, so each operation is a single atomic command.
type RedisStore struct {
	client *redis.Client
	id     *identity
}

// NewRedisStore connects and pings the server. The device id file lives in idDir.
func NewRedisStore(ctx context.Context, cfg RedisConfig, idDir string, logger zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, unavailable("connect redis", fmt.Errorf("%s: %w", cfg.Addr, err))
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis record store")

	return newRedisStoreWithClient(client, idDir), nil
}

func newRedisStoreWithClient(client *redis.Client, idDir string) *RedisStore {
	return &RedisStore{client: client, id: newIdentity(idDir)}
}

func (s *RedisStore) All(ctx context.Context) (map[string]Document, error) {
	vals, err := s.client.HGetAll(ctx, redisSessionsKey).Result()
	if err != nil {
		return nil, unavailable("list sessions", err)
	}
	out := make(map[string]Document, len(vals))
	for k, v := range vals {
		out[k] = Document(v)
	}
	return out, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, doc Document) error {
	if err := ValidateDocument(doc); err != nil {
		return err
	}
	if err := s.client.HSet(ctx, redisSessionsKey, key, []byte(doc)).Err(); err != nil {
		return unavailable("save session", err)
	}
	return nil
}

func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.HExists(ctx, redisSessionsKey, key).Result()
	if err != nil {
		return false, unavailable("lookup session", err)
	}
	return ok, nil
}

func (s *RedisStore) FirstSessionDate(ctx context.Context) (string, bool, error) {
	v, err := s.client.Get(ctx, redisFirstKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("read first session date", err)
	}
	return v, true, nil
}

func (s *RedisStore) SetFirstSessionDate(ctx context.Context, key string) error {
	if err := s.client.SetNX(ctx, redisFirstKey, key, 0).Err(); err != nil {
		return unavailable("set first session date", err)
	}
	return nil
}

func (s *RedisStore) Setting(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, redisSettingsKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("read setting", err)
	}
	return v, true, nil
}

func (s *RedisStore) SetSetting(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, redisSettingsKey, key, value).Err(); err != nil {
		return unavailable("set setting", err)
	}
	return nil
}

func (s *RedisStore) DeviceID(_ context.Context) (string, error) {
	return s.id.get()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
