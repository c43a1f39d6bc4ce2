// Package cache keeps computed reports for a short time so repeated dashboard
// reads do not recompute everything from the ledger.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache stores JSON-encodable report payloads
type Cache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context)
}

// Noop never hits
type Noop struct{}

func (Noop) Get(context.Context, string, any) bool { return false }
func (Noop) Set(context.Context, string, any)      {}
func (Noop) Invalidate(context.Context)            {}

// NewRedisClient connects to addr, accepting either a redis:// URL or host:port
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	url := addr
	if !strings.Contains(url, "://") {
		url = "redis://" + url
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Redis is a Cache backed by redis string keys with a TTL
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *logrus.Logger
}

// NewRedis creates a redis cache
func NewRedis(client *redis.Client, ttl time.Duration, log *logrus.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, prefix: "cashflow:report:", log: log}
}

// Get decodes a cached value into dst
func (r *Redis) Get(ctx context.Context, key string, dst any) bool {
	cached, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warnf("Cache read failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(cached, dst); err != nil {
		r.log.Warnf("Cache entry %s is corrupt: %v", key, err)
		return false
	}
	return true
}

// Set stores value under key
func (r *Redis) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		r.log.Warnf("Failed to encode cache entry %s: %v", key, err)
		return
	}
	if err := r.client.SetEx(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		r.log.Warnf("Cache write failed for %s: %v", key, err)
	}
}

// Invalidate drops every cached report
func (r *Redis) Invalidate(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.log.Warnf("Cache scan failed: %v", err)
		return
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			r.log.Warnf("Cache invalidation failed: %v", err)
		}
	}
}
