package research

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func countingSearcher(results []SearchResult, err error) (*int, Searcher) {
	calls := 0
	return &calls, SearcherFunc(func(context.Context, string, int) ([]SearchResult, error) {
		calls++
		return results, err
	})
}

func TestCachedSearcher_HitAfterMiss(t *testing.T) {
	calls, next := countingSearcher([]SearchResult{{Title: "t", Link: "https://a.com/1"}}, nil)
	cache := newMemoryCache()
	s := NewCachedSearcher(next, cache, 0)

	first, err := s.Search(context.Background(), "go interview", 3)
	require.NoError(t, err)
	second, err := s.Search(context.Background(), "go interview", 3)
	require.NoError(t, err)

	assert.Equal(t, 1, *calls)
	assert.Equal(t, first, second)
	for _, ttl := range cache.ttls {
		assert.Equal(t, DefaultCacheTTL, ttl)
	}

	// a different num is a different key
	_, err = s.Search(context.Background(), "go interview", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestCachedSearcher_DoesNotCacheEmptyOrErrors(t *testing.T) {
	calls, next := countingSearcher(nil, nil)
	cache := newMemoryCache()
	s := NewCachedSearcher(next, cache, time.Minute)

	_, _ = s.Search(context.Background(), "q", 3)
	_, _ = s.Search(context.Background(), "q", 3)
	assert.Equal(t, 2, *calls)
	assert.Empty(t, cache.data)

	_, failing := countingSearcher(nil, errors.New("boom"))
	s = NewCachedSearcher(failing, cache, time.Minute)
	_, err := s.Search(context.Background(), "q", 3)
	assert.Error(t, err)
	assert.Empty(t, cache.data)
}

func TestCachedSearcher_CacheFailuresFallThrough(t *testing.T) {
	calls, next := countingSearcher([]SearchResult{{Link: "https://a.com"}}, nil)
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	s := NewCachedSearcher(next, cache, time.Minute)

	results, err := s.Search(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, *calls)
}

func TestCachedSearcher_CorruptEntryIgnored(t *testing.T) {
	calls, next := countingSearcher([]SearchResult{{Link: "https://a.com"}}, nil)
	cache := newMemoryCache()
	cache.data[cacheKey("q", 3)] = "{not json"
	s := NewCachedSearcher(next, cache, time.Minute)

	results, err := s.Search(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, *calls)
}

func TestRedisCache_Integration(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, redisURL)
	require.NoError(t, err)
	defer client.Close()

	cache := NewRedisCache(client, "interview-prep:test:")
	key := cacheKey(t.Name(), int(time.Now().UnixNano()%1000))

	_, err = cache.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, key, `[{"title":"x"}]`, time.Minute))
	v, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"x"}]`, v)

	client.Del(ctx, "interview-prep:test:"+key)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
