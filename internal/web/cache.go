package web

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"go.uber.org/zap"
)

// Cache memoizes finished workbooks in redis so identical source lists
// within the TTL skip the browser entirely.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to redis at addr. The connection is verified
// up front: a misconfigured cache address should fail at startup, not
// on the first task.
func NewCache(addr string, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// Key derives a stable cache key from the normalized source list.
// Order matters: the merged output's column order depends on it.
func Key(urls, tickers []string) string {
	h := sha256.Sum256([]byte(strings.Join(urls, "\n") + "\x00" + strings.Join(tickers, "\n")))
	return "finsheet:workbook:" + hex.EncodeToString(h[:])
}

// Memoize returns the cached bytes for key, or runs fn and stores its
// result. Cache errors degrade to running fn; the cache is an
// optimization, never a correctness dependency.
func (c *Cache) Memoize(ctx context.Context, key string, fn func() ([]byte, error)) ([]byte, error) {
	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		zap.L().Info("cache hit", zap.String("key", key))
		return cached, nil
	}

	data, err := fn()
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		zap.L().Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
	return data, nil
}
