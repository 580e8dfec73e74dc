// Package cache memoises search results in Redis. Keys are derived from the
// normalised query terms, the limit, the index instance id and its
// generation, so any index mutation makes older entries unreachable and
// they simply expire. The instance id keeps indexes in other processes,
// which count generations independently, from reading each other's entries.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/redis"
)

const keyPrefix = "search:"

// Store is satisfied by *pkgredis.Client. Get must return an error for which
// pkgredis.IsNilError is true when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// GetOrCompute returns the cached result for (terms, limit, indexID,
// generation) or
// runs compute, stores its result and returns it. Concurrent misses for the
// same key share one compute call. Redis failures degrade to computing.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	terms []string,
	limit int,
	indexID string,
	generation uint64,
	compute func() *executor.SearchResult,
) (*executor.SearchResult, bool) {
	key := buildKey(terms, limit, indexID, generation)
	if result, ok := c.get(ctx, key); ok {
		return result, true
	}
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.get(ctx, key); ok {
			return result, nil
		}
		result := compute()
		c.set(ctx, key, result)
		return result, nil
	})
	return val.(*executor.SearchResult), false
}

func (c *QueryCache) get(ctx context.Context, key string) (*executor.SearchResult, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	c.metrics.CacheHit()
	c.logger.Debug("cache hit", "key", key)
	return &result, true
}

func (c *QueryCache) set(ctx context.Context, key string, result *executor.SearchResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	c.metrics.CacheMiss()
}

// Invalidate deletes every cached result. Generation-keyed entries never go
// stale, so this only reclaims memory ahead of their TTL.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the sorted terms. Scores do not depend on term order but
// do depend on repeats, so duplicates are kept.
func buildKey(terms []string, limit int, indexID string, generation uint64) string {
	sorted := slices.Clone(terms)
	slices.Sort(sorted)
	h := sha256.New()
	h.Write([]byte(indexID))
	h.Write([]byte{0})
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], generation)
	h.Write(buf[:])
	h.Write([]byte(strconv.Itoa(limit)))
	for _, t := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(t))
	}
	return fmt.Sprintf("%s%x", keyPrefix, h.Sum(nil)[:16])
}
