// Package cache provides the optional Redis-backed page cache used at the
// fetch boundary. Fetching a season page is idempotent, so a cached copy
// is as good as a re-fetch for the cache TTL.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "fastbreak:page:"

// RedisPages caches fetched pages keyed by URL.
type RedisPages struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisPages connects to Redis and verifies the connection.
func NewRedisPages(redisURL string, ttl time.Duration, log zerolog.Logger) (*RedisPages, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisPages{client: client, ttl: ttl, log: log}, nil
}

// Close closes the Redis connection.
func (c *RedisPages) Close() error {
	return c.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (c *RedisPages) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the cached page for url, if any. Cache errors degrade to a
// miss; the fetch path must keep working without Redis.
func (c *RedisPages) Get(ctx context.Context, url string) (string, bool) {
	html, err := c.client.Get(ctx, keyPrefix+url).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("page cache read failed")
		return "", false
	}
	return html, true
}

// Set stores the page for url with the configured TTL.
func (c *RedisPages) Set(ctx context.Context, url, html string) {
	if err := c.client.Set(ctx, keyPrefix+url, html, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("page cache write failed")
	}
}
