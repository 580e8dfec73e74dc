package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/metrics"
)

type memoryStore struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = string(value)
	s.ttls[key] = ttl
	return nil
}

func (s *memoryStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

func sampleResult() *executor.SearchResult {
	return &executor.SearchResult{
		Terms:     []string{"camis"},
		TotalHits: 1,
		Hits: []executor.Hit{{
			Product: catalog.Product{ID: 11, Name: "Camisa Polo", Brand: "Lacoste"},
			Score:   2,
		}},
		Generation: 4,
	}
}

func TestGetOrComputeMissThenHit(t *testing.T) {
	store := newMemoryStore()
	m := metrics.New()
	c := New(store, time.Minute, m)
	ctx := context.Background()

	calls := 0
	compute := func() *executor.SearchResult {
		calls++
		return sampleResult()
	}

	first, hit := c.GetOrCompute(ctx, []string{"camis"}, 10, "idx", 4, compute)
	assert.False(t, hit)
	assert.Equal(t, sampleResult(), first)

	second, hit := c.GetOrCompute(ctx, []string{"camis"}, 10, "idx", 4, compute)
	assert.True(t, hit)
	assert.Equal(t, sampleResult(), second)
	assert.Equal(t, 1, calls)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses) // outer and in-flight recheck
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))

	for _, ttl := range store.ttls {
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestKeyDependsOnIndexGenerationAndLimit(t *testing.T) {
	base := buildKey([]string{"a", "b"}, 10, "idx", 1)

	assert.True(t, strings.HasPrefix(base, keyPrefix))
	assert.Equal(t, base, buildKey([]string{"b", "a"}, 10, "idx", 1))
	assert.NotEqual(t, base, buildKey([]string{"a", "b"}, 10, "idx", 2))
	assert.NotEqual(t, base, buildKey([]string{"a", "b"}, 10, "other", 1))
	assert.NotEqual(t, base, buildKey([]string{"a", "b"}, 5, "idx", 1))
	assert.NotEqual(t, base, buildKey([]string{"a", "b", "b"}, 10, "idx", 1))
	assert.NotEqual(t, buildKey([]string{"ab"}, 10, "idx", 1), buildKey([]string{"a", "b"}, 10, "idx", 1))
}

func TestIndexesSharingStoreDoNotMix(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()

	black := index.NewMemoryIndex(tokenizer.New())
	black.Add(catalog.New(10, "Camisa Preta", "", "", ""))
	white := index.NewMemoryIndex(tokenizer.New())
	white.Add(catalog.New(11, "Camisa Branca", "", "", ""))
	require.Equal(t, black.Generation(), white.Generation())

	first := executor.New(black, executor.WithCache(New(store, time.Minute, nil)))
	second := executor.New(white, executor.WithCache(New(store, time.Minute, nil)))

	got := first.Execute(ctx, "camisa", 10)
	require.Len(t, got.Hits, 1)
	assert.Equal(t, uint32(10), got.Hits[0].Product.ID)

	got = second.Execute(ctx, "camisa", 10)
	require.Len(t, got.Hits, 1)
	assert.Equal(t, uint32(11), got.Hits[0].Product.ID)
	assert.Len(t, store.data, 2)
}

func TestStoreErrorsFallBackToCompute(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("connection refused")
	c := New(store, time.Minute, nil)

	var calls int
	for i := 0; i < 2; i++ {
		got, hit := c.GetOrCompute(context.Background(), []string{"camis"}, 10, "idx", 4, func() *executor.SearchResult {
			calls++
			return sampleResult()
		})
		assert.False(t, hit)
		assert.Equal(t, int64(11), int64(got.Hits[0].Product.ID))
	}
	assert.Equal(t, 2, calls)
}

func TestCorruptEntryIsRecomputed(t *testing.T) {
	store := newMemoryStore()
	store.data[buildKey([]string{"x"}, 10, "idx", 0)] = "{not json"
	c := New(store, time.Minute, nil)

	_, hit := c.GetOrCompute(context.Background(), []string{"x"}, 10, "idx", 0, sampleResult)
	assert.False(t, hit)
}

func TestConcurrentMissesShareCompute(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCompute(context.Background(), []string{"tv"}, 10, "idx", 1, func() *executor.SearchResult {
				calls.Add(1)
				<-release
				return sampleResult()
			})
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// goroutines that arrive after the first compute finishes read the stored entry
	assert.Equal(t, int32(1), calls.Load())
}

func TestInvalidate(t *testing.T) {
	store := newMemoryStore()
	store.data["other:key"] = "keep"
	c := New(store, time.Minute, nil)
	c.GetOrCompute(context.Background(), []string{"a"}, 10, "idx", 1, sampleResult)
	c.GetOrCompute(context.Background(), []string{"b"}, 10, "idx", 1, sampleResult)

	require.NoError(t, c.Invalidate(context.Background()))
	assert.Equal(t, map[string]string{"other:key": "keep"}, store.data)
}

type failingStore struct {
	*memoryStore
	calls int
}

func (f *failingStore) Get(context.Context, string) (string, error) {
	f.calls++
	return "", errors.New("connection refused")
}

func TestGuardedStoreOpensOnFailures(t *testing.T) {
	inner := &failingStore{memoryStore: newMemoryStore()}
	g := NewGuardedStore(inner, 50*time.Millisecond)

	for i := 0; i < 10; i++ {
		_, err := g.Get(context.Background(), "k")
		assert.Error(t, err)
	}
	assert.Equal(t, 5, inner.calls)
	assert.Equal(t, "open", g.State().String())
}

func TestGuardedStoreMissIsNotFailure(t *testing.T) {
	g := NewGuardedStore(newMemoryStore(), 50*time.Millisecond)
	for i := 0; i < 10; i++ {
		_, err := g.Get(context.Background(), "missing")
		assert.True(t, errors.Is(err, redis.Nil))
	}
	require.NoError(t, g.Set(context.Background(), "k", []byte("v"), time.Minute))
	v, err := g.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.Equal(t, "closed", g.State().String())
}

// slowStore blocks every call until its context ends.
type slowStore struct{ *memoryStore }

func (s slowStore) Get(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (s slowStore) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestGuardedStoreBoundsSlowCalls(t *testing.T) {
	g := NewGuardedStore(slowStore{newMemoryStore()}, 10*time.Millisecond)

	start := time.Now()
	_, err := g.Get(context.Background(), "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorContains(t, err, "cache get")
	err = g.Set(context.Background(), "k", []byte("v"), time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	unbounded := NewGuardedStore(newMemoryStore(), 0)
	require.NoError(t, unbounded.Set(context.Background(), "k", []byte("v"), time.Minute))
	v, err := unbounded.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
