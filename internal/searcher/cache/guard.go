package cache

import (
	"context"
	"fmt"
	"time"

	pkgredis "github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/resilience"
)

// GuardedStore bounds every Store call by a deadline and stops calling a
// failing Redis altogether until the breaker's reset timeout has passed.
// Search latency then stays independent of cache health. The deadline is
// carried on the context, which go-redis applies to the socket.
type GuardedStore struct {
	store   Store
	breaker *resilience.CircuitBreaker
	timeout time.Duration
}

func NewGuardedStore(store Store, timeout time.Duration) *GuardedStore {
	return &GuardedStore{
		store: store,
		breaker: resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     10 * time.Second,
			IsFailure: func(err error) bool {
				return err != nil && !pkgredis.IsNilError(err)
			},
		}),
		timeout: timeout,
	}
}

func (g *GuardedStore) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := g.breaker.Execute(func() error {
		ctx, cancel := g.bound(ctx)
		defer cancel()
		var err error
		v, err = g.store.Get(ctx, key)
		return deadlineErr(ctx, "cache get", err)
	})
	return v, err
}

func (g *GuardedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return g.breaker.Execute(func() error {
		ctx, cancel := g.bound(ctx)
		defer cancel()
		return deadlineErr(ctx, "cache set", g.store.Set(ctx, key, value, ttl))
	})
}

func (g *GuardedStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// deadlineErr names the operation when err came from the call's own
// deadline, so logs tell a slow Redis from a refused one.
func deadlineErr(ctx context.Context, op string, err error) error {
	if err == nil || ctx.Err() == nil {
		return err
	}
	return fmt.Errorf("%s: %w", op, ctx.Err())
}

// FlushByPattern is maintenance, not on the query path, so it only goes
// through the breaker.
func (g *GuardedStore) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	var n int64
	err := g.breaker.Execute(func() error {
		var err error
		n, err = g.store.FlushByPattern(ctx, pattern)
		return err
	})
	return n, err
}

func (g *GuardedStore) State() resilience.State {
	return g.breaker.State()
}
