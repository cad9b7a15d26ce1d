package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"
)

// DefaultPageCacheTTL is how long fetched pages are reused.
const DefaultPageCacheTTL = 6 * time.Hour

// Cache stores serialized pages. Get returns an error for a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedFetcher wraps URL with a cache. Only successful fetches are cached.
type CachedFetcher struct {
	cache   Cache
	options *Options
	ttl     time.Duration
}

// NewCachedFetcher creates a cached fetcher. A nil cache fetches every time.
func NewCachedFetcher(cache Cache, opts *Options, ttl time.Duration) *CachedFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if ttl <= 0 {
		ttl = DefaultPageCacheTTL
	}
	return &CachedFetcher{cache: cache, options: opts, ttl: ttl}
}

// Fetch returns the page at urlStr and whether it came from the cache.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*Result, bool, error) {
	key := pageKey(urlStr)

	if f.cache != nil {
		if raw, err := f.cache.Get(ctx, key); err == nil {
			var cached Result
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil && cached.HTML != "" {
				return &cached, true, nil
			}
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return result, false, err
	}

	if f.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := f.cache.Set(ctx, key, string(data), f.ttl); err != nil {
				log.Printf("[fetch] cache write failed for %s: %v", urlStr, err)
			}
		}
	}
	return result, false, nil
}

func pageKey(urlStr string) string {
	sum := sha256.Sum256([]byte(urlStr))
	return "page:" + hex.EncodeToString(sum[:])
}
