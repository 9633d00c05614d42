// Package cache provides a small read-through cache for computed insight
// payloads, backed by Redis. A nil *Cache is valid and disables caching, so
// the service can run without Redis in local setups.
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

// TTLs per insight kind. Forecast and benchmark results move slowly,
// anomalies should surface quickly after new transactions land.
const (
	TTLHealthScore     = 6 * time.Hour
	TTLAnomalies       = 1 * time.Hour
	TTLForecast        = 24 * time.Hour
	TTLRecommendations = 12 * time.Hour
	TTLBenchmark       = 7 * 24 * time.Hour
)

// Cache wraps a Redis client with JSON marshalling and namespaced keys.
type Cache struct {
	client *redis.Client
	log    *logrus.Logger
}

// Connect dials Redis at the given URL ("redis://host:port" or plain
// "host:port") and verifies the connection with a ping.
func Connect(ctx context.Context, redisURL string, log *logrus.Logger) (*Cache, error) {
	if !strings.Contains(redisURL, "://") {
		redisURL = "redis://" + redisURL
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Cache{client: client, log: log}, nil
}

// NewWithClient wraps an existing client. Used by tests with miniature
// or mock servers.
func NewWithClient(client *redis.Client, log *logrus.Logger) *Cache {
	return &Cache{client: client, log: log}
}

func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Key builds a namespaced cache key: insights:<kind>:<userID>:<params...>.
func Key(kind, userID string, params ...string) string {
	parts := append([]string{"insights", kind, userID}, params...)
	return strings.Join(parts, ":")
}

// Get loads the cached JSON at key into dest. Returns false on a miss; cache
// errors are logged and treated as misses so Redis trouble never fails a
// request.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	cached, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("discarding malformed cache entry")
		return false
	}
	return true
}

// Set stores value as JSON under key with the given TTL. Failures are logged,
// never returned: serving a fresh result matters more than caching it.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache marshal failed")
		return
	}
	if err := c.client.SetEx(ctx, key, data, ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// InvalidateUser drops every cached insight for a user. Called after writes
// that change the underlying transaction data.
func (c *Cache) InvalidateUser(ctx context.Context, userID string) {
	if c == nil || c.client == nil {
		return
	}
	pattern := Key("*", userID) + "*"
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.WithError(err).Warn("cache invalidation failed")
		}
	}
	if err := iter.Err(); err != nil {
		c.log.WithError(err).Warn("cache scan failed")
	}
}
