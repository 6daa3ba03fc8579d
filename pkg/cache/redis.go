package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis stores entries in a Redis server under a common key prefix.
type Redis struct {
	Client *redis.Client
	Prefix string
}

// NewRedis connects to addr and verifies the connection with a PING.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{Client: client, Prefix: "preview:"}, nil
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.Client.Get(ctx, r.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

// Set implements Cache. A non-positive ttl stores the key without expiry.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.Client.Set(ctx, r.Prefix+key, value, ttl).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.Client.Close()
}
