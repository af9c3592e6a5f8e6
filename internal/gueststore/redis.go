package gueststore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"cartsync/internal/domain"
)

// RedisStore keeps guest snapshots in Redis, one key per guest id, so
// guest carts survive restarts and multiple instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(addr string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (s *RedisStore) Read(ctx context.Context, guestID string) []domain.CartLine {
	raw, err := s.client.Get(ctx, redisKey(guestID)).Bytes()
	if err != nil {
		return nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil
	}
	return lines
}

func (s *RedisStore) Write(ctx context.Context, guestID string, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(guestID), raw, s.ttl).Err()
}

// Ping verifies connectivity, used by the readiness probe.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisKey(guestID string) string {
	return "guestcart:" + guestID
}
