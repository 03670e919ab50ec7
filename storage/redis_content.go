package storage

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/go-certichain/certichain/storage/model"
)

const redisContentPrefix = "certichain:content:"

// RedisContentStore implements model.ContentStore in redis. Blobs are
// stored without expiry.
type RedisContentStore struct {
	client redis.UniversalClient
}

// NewRedisContentStore connects to redis with the passed options and pings
// the server.
func NewRedisContentStore(ctx context.Context, opts *redis.Options) (*RedisContentStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}
	return &RedisContentStore{client: client}, nil
}

// Put implements the model.ContentStore interface
func (s *RedisContentStore) Put(ctx context.Context, hash string, data []byte) error {
	return s.client.SetNX(ctx, redisContentPrefix+hash, data, 0).Err()
}

// Get implements the model.ContentStore interface
func (s *RedisContentStore) Get(ctx context.Context, hash string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisContentPrefix+hash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.NotFoundErrorFmt("content not found: %s", hash)
	}
	return data, err
}

// Close closes the redis connection
func (s *RedisContentStore) Close() error {
	return s.client.Close()
}
