package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 5 * time.Second

// JSONCache stores JSON-serialized values under a common key prefix.
type JSONCache struct {
	client *redis.Client
	prefix string
}

func NewJSONCache(client *redis.Client, prefix string) *JSONCache {
	return &JSONCache{client: client, prefix: prefix}
}

func (slf *JSONCache) key(k string) string {
	return slf.prefix + k
}

// Set stores value under key with a TTL. A zero ttl keeps the key forever.
func (slf *JSONCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return slf.client.Set(ctx, slf.key(key), data, ttl).Err()
}

// Get decodes the value under key into dest. Returns redis.Nil if the key does
// not exist.
func (slf *JSONCache) Get(ctx context.Context, key string, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	data, err := slf.client.Get(ctx, slf.key(key)).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (slf *JSONCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	return slf.client.Del(ctx, slf.key(key)).Err()
}

func (slf *JSONCache) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	n, err := slf.client.Exists(ctx, slf.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsRedisNil returns true if the error is a redis key-not-found error.
func IsRedisNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
