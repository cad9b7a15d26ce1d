package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMiss = errors.New("miss")

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return "", errMiss
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = value
	m.ttls[key] = ttl
	return nil
}

func countingServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestCachedFetcher_HitAfterMiss(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, "<html><body>job</body></html>")
	cache := newMemoryCache()
	f := NewCachedFetcher(cache, nil, time.Minute)

	first, cached, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first.HTML, second.HTML)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.Equal(t, time.Minute, cache.ttls[pageKey(srv.URL)])
}

func TestCachedFetcher_DoesNotCacheFailures(t *testing.T) {
	srv, hits := countingServer(t, http.StatusNotFound, "gone")
	cache := newMemoryCache()
	f := NewCachedFetcher(cache, nil, 0)

	for i := 0; i < 2; i++ {
		_, cached, err := f.Fetch(context.Background(), srv.URL)
		require.Error(t, err)
		assert.False(t, cached)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
	assert.Empty(t, cache.entries)
}

func TestCachedFetcher_CorruptEntryRefetches(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, "<html>ok</html>")
	cache := newMemoryCache()
	cache.entries[pageKey(srv.URL)] = "{not json"
	f := NewCachedFetcher(cache, nil, 0)

	result, cached, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Contains(t, result.HTML, "ok")
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestCachedFetcher_CacheWriteFailureIsIgnored(t *testing.T) {
	srv, _ := countingServer(t, http.StatusOK, "<html>ok</html>")
	cache := newMemoryCache()
	cache.setErr = errors.New("redis down")
	f := NewCachedFetcher(cache, nil, 0)

	result, _, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, result.HTML, "ok")
}

func TestCachedFetcher_NilCache(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, "<html>ok</html>")
	f := NewCachedFetcher(nil, nil, 0)

	_, _, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	_, cached, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestPageKey(t *testing.T) {
	assert.Equal(t, pageKey("https://a.example"), pageKey("https://a.example"))
	assert.NotEqual(t, pageKey("https://a.example"), pageKey("https://b.example"))
	assert.Regexp(t, `^page:[0-9a-f]{64}$`, pageKey("https://a.example"))
}
