// internal/common/cache/redis.go
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kpi-dashboard/internal/common/config"
	apperrors "kpi-dashboard/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// RedisClient wraps the Redis client
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return &RedisClient{Client: rdb}
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(fmt.Errorf("redis ping failed: %w", err))
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// RecordCache stores fetched table snapshots for a short TTL so dashboard
// refreshes do not hit the record store on every request. KPIs themselves are
// never cached; they are recomputed from the snapshot each time.
type RecordCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRecordCache(rdb *redis.Client, ttl time.Duration, prefix string) *RecordCache {
	return &RecordCache{rdb: rdb, ttl: ttl, prefix: prefix}
}

// Key identifies a snapshot by base, table and projected fields. Field order
// matters to the store, so it matters to the key.
func (c *RecordCache) Key(base, table string, fields []string) string {
	sum := sha1.Sum([]byte(strings.Join(fields, "\x1f")))
	return fmt.Sprintf("%s:records:%s:%s:%s", c.prefix, base, table, hex.EncodeToString(sum[:8]))
}

// Get loads a snapshot. It returns ErrMiss when nothing is cached and a
// CACHE_UNAVAILABLE error when Redis cannot be read.
func (c *RecordCache) Get(ctx context.Context, key string) ([]map[string]any, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, apperrors.NewCacheUnavailableError(err)
	}
	var records []map[string]any
	if err := json.Unmarshal(val, &records); err != nil {
		return nil, fmt.Errorf("decode cached snapshot %s: %w", key, err)
	}
	return records, nil
}

// Set stores a snapshot with the cache TTL.
func (c *RecordCache) Set(ctx context.Context, key string, records []map[string]any) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return apperrors.NewCacheUnavailableError(err)
	}
	return nil
}

// Invalidate drops every snapshot under the cache prefix.
func (c *RecordCache) Invalidate(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, c.prefix+":records:*", 100).Result()
		if err != nil {
			return removed, apperrors.NewCacheUnavailableError(err)
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return removed, apperrors.NewCacheUnavailableError(err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}
