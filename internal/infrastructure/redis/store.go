package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ainager-onboarding/internal/domain"
	"github.com/redis/go-redis/v9"
)

// compareAndDelete deletes KEYS[1] only when it still holds ARGV[1].
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Store implements domain.StateStore on Redis. Keys are namespaced so the
// database can be shared with other services.
type Store struct {
	client    redis.UniversalClient
	namespace string
}

// NewClient creates a single-node Redis client.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewStore(client redis.UniversalClient, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (s *Store) key(k string) string { return s.namespace + ":" + k }

func (s *Store) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	n, err := compareAndDelete.Run(ctx, s.client, []string{s.key(key)}, expected).Int64()
	if err != nil {
		return false, fmt.Errorf("redis compare-and-delete %s: %w", key, err)
	}
	return n == 1, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
