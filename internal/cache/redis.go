// Package cache keeps serialized snapshots (the unified client table, all
// payments) in Redis for a declared TTL. Every write invalidates the whole
// namespace. A nil client disables caching.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"megacrm-backend/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// Snapshot keys, relative to the cache prefix
const (
	ClientsKey  = "clients:all"
	PaymentsKey = "payments:all"
)

// Connect opens a Redis client and pings it. On failure the client is
// closed and nil is returned so callers degrade to uncached reads.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

type Cache struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *Cache {
	if prefix == "" {
		prefix = "megacrm:"
	}
	return &Cache{client: client, prefix: prefix}
}

// Enabled reports whether a Redis client is attached
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON decodes the cached value of key into dst
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	if !c.Enabled() {
		return false
	}
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[Cache] get %s: %v", key, err)
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Printf("[Cache] decode %s: %v", key, err)
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return true
}

// SetJSON stores v under key for ttl
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[Cache] encode %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		log.Printf("[Cache] set %s: %v", key, err)
	}
}

// InvalidateAll removes every key of the namespace
func (c *Cache) InvalidateAll(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	keys, err := c.client.Keys(ctx, c.prefix+"*").Result()
	if err != nil {
		log.Printf("[Cache] list keys: %v", err)
		return
	}
	if len(keys) > 0 {
		c.client.Del(ctx, keys...)
	}
}

// Ping checks the Redis connection; a disabled cache is healthy
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
