package research

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long search results stay cached.
const DefaultCacheTTL = 24 * time.Hour

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized search results.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// RedisCache implements Cache on a go-redis client.
type RedisCache struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisCache wraps rdb. Keys are stored under prefix.
func NewRedisCache(rdb redis.Cmdable, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "interview-prep:search:"
	}
	return &RedisCache{rdb: rdb, prefix: prefix}
}

// Get returns the cached value or ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return v, err
}

// Set stores value for ttl.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+key, value, ttl).Err()
}

// CachedSearcher serves repeated queries from a Cache.
// Cache failures fall through to the live searcher and are only logged.
type CachedSearcher struct {
	next  Searcher
	cache Cache
	ttl   time.Duration
}

// NewCachedSearcher wraps next with cache. A zero ttl uses DefaultCacheTTL.
func NewCachedSearcher(next Searcher, cache Cache, ttl time.Duration) *CachedSearcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSearcher{next: next, cache: cache, ttl: ttl}
}

// Search returns cached results when present, otherwise searches and caches non-empty results.
func (c *CachedSearcher) Search(ctx context.Context, query string, num int) ([]SearchResult, error) {
	key := cacheKey(query, num)

	if raw, err := c.cache.Get(ctx, key); err == nil {
		var cached []SearchResult
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached, nil
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Printf("[research] cache read failed for %q: %v", query, err)
	}

	results, err := c.next.Search(ctx, query, num)
	if err != nil || len(results) == 0 {
		return results, err
	}

	if data, err := json.Marshal(results); err == nil {
		if err := c.cache.Set(ctx, key, string(data), c.ttl); err != nil {
			log.Printf("[research] cache write failed for %q: %v", query, err)
		}
	}
	return results, nil
}

func cacheKey(query string, num int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", query, num)))
	return hex.EncodeToString(sum[:])
}
