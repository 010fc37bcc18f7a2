package blobstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/msgcrypt/blob"
)

// DefaultTTL is how long a blob stays retrievable.
const DefaultTTL = 14 * 24 * time.Hour

// keyPrefix namespaces blob keys in a shared redis database.
const keyPrefix = "blob:"

// RedisStore persists blobs in redis with a TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore wraps rdb. A non-positive ttl means DefaultTTL.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(id blob.ID) string {
	return keyPrefix + id.String()
}

// Put implements Store. IDs are claimed with SETNX so a collision is retried
// instead of overwriting another blob.
func (s *RedisStore) Put(ctx context.Context, data []byte) (blob.ID, error) {
	if err := validateBlob(data); err != nil {
		return blob.ID{}, err
	}

	for attempt := 0; attempt < 3; attempt++ {
		id, err := newID()
		if err != nil {
			return blob.ID{}, err
		}
		ok, err := s.rdb.SetNX(ctx, redisKey(id), data, s.ttl).Result()
		if err != nil {
			return blob.ID{}, fmt.Errorf("redis set %s: %w", id, err)
		}
		if !ok {
			continue
		}

		logrus.WithFields(logrus.Fields{
			"function": "RedisStore.Put",
			"blob_id":  id.String(),
			"size":     len(data),
			"ttl":      s.ttl,
		}).Debug("Stored blob")
		return id, nil
	}
	return blob.ID{}, errors.New("redis: could not allocate a free blob id")
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id blob.ID) ([]byte, error) {
	data, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	return data, nil
}

// Ping checks the redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
