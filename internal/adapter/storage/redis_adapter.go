package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-bot/internal/core/domain"
)

const (
	snapshotKey          = "inventory:snapshot"
	idempotencyKeyPrefix = "update:"
	idempotencyKeyTTL    = 24 * time.Hour
)

// RedisAdapter stores the inventory document under a single key and
// de-duplicates redelivered transport updates.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) LoadSnapshot(ctx context.Context) (map[string]domain.Item, error) {
	data, err := r.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

func (r *RedisAdapter) SaveSnapshot(ctx context.Context, items map[string]domain.Item) error {
	data, err := encodeSnapshot(items)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) Close() error { return r.client.Close() }
