package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bazaar-flipper/internal/engine"
	"bazaar-flipper/internal/logger"
)

// Redis is a result cache backed by a Redis instance. Values are JSON with a
// server-side TTL, so expiry semantics match the in-memory backend.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the Redis at url (redis://...) and verifies the
// connection before returning.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// Get returns the cached list if the key exists; any Redis or decode error
// counts as a miss so the caller just recomputes.
func (r *Redis) Get(ctx context.Context, key string) ([]engine.FlipRecord, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var recs []engine.FlipRecord
	if err := json.Unmarshal([]byte(val), &recs); err != nil {
		return nil, false
	}
	return recs, true
}

// Set stores a list under key with the given TTL. Best effort: a write
// failure only costs a recompute on the next request.
func (r *Redis) Set(ctx context.Context, key string, recs []engine.FlipRecord, ttl time.Duration) {
	b, err := json.Marshal(recs)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		logger.Warn("Cache", fmt.Sprintf("Redis set %s failed: %v", key, err))
	}
}

// Close releases the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
