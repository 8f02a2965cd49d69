package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/port"
	"github.com/redis/go-redis/v9"
)

var _ port.KeyValue = (*Redis)(nil)

const redisOpTimeout = 3 * time.Second

// Redis is the KeyValue backend for multi-device runs: the persisted
// client state lives server-side under a common prefix instead of on the
// local disk.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	const op = "storage.NewRedis"

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: redis is unavailable: %w", op, err)
	}
	slog.Info("redis storage ready", "op", op, "addr", addr)
	return &Redis{client, prefix}, nil
}

func (s *Redis) Load(key string) ([]byte, error) {
	const op = "Redis.Load"

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, port.ErrNoValue
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s *Redis) Save(key string, value []byte) error {
	const op = "Redis.Save"

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Redis) Remove(key string) error {
	const op = "Redis.Remove"

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Redis) Close() {
	const op = "Redis.Close"

	if err := s.client.Close(); err != nil {
		slog.Error("failed to close redis client", "op", op, "err", err)
	}
}
