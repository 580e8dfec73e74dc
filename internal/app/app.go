// Package app assembles the search engine from configuration: tokenizer,
// index, catalog load, optional Redis cache, analytics collector and
// product-event consumer.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/redis"
)

const cacheCallTimeout = 50 * time.Millisecond

// Options selects the optional infrastructure a command wants. Each one is
// still skipped when its configuration is absent.
type Options struct {
	Cache     bool
	Analytics bool
	Consumer  bool
}

type Engine struct {
	Config   *config.Config
	Index    *index.MemoryIndex
	Executor *executor.Executor
	Metrics  *metrics.Metrics
	Health   *health.Checker
	Cache    *cache.QueryCache

	collector *analytics.Collector
	consumer  *consumer.IndexConsumer
	started   bool
	closers   []func() error
	logger    *slog.Logger
}

// Build constructs an Engine and loads the configured catalog. Redis is
// optional at runtime: if it cannot be reached the engine runs uncached.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*Engine, error) {
	e := &Engine{
		Config:  cfg,
		Metrics: metrics.New(),
		Health:  health.NewChecker(),
		logger:  slog.Default().With("component", "engine"),
	}

	tok, err := tokenizer.ForLanguage(cfg.Index.Language, cfg.Index.StopWords, cfg.Index.Stemming)
	if err != nil {
		return nil, fmt.Errorf("building tokenizer: %w", err)
	}
	e.Index = index.NewMemoryIndex(tok)
	e.Metrics.RegisterIndex(func() (int, int) {
		s := e.Index.Stats()
		return s.Terms, s.Products
	})
	e.Health.Register("index", func(context.Context) health.ComponentHealth {
		s := e.Index.Stats()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d products, %d terms", s.Products, s.Terms),
		}
	})

	if err := e.loadCatalog(ctx); err != nil {
		e.Close()
		return nil, err
	}

	execOpts := []executor.Option{
		executor.WithParams(ranker.Params{Boost: cfg.Search.Boost}),
		executor.WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxResults),
		executor.WithMetrics(e.Metrics),
	}
	if opts.Cache && cfg.Redis.Enabled {
		if c := e.connectCache(ctx); c != nil {
			execOpts = append(execOpts, executor.WithCache(c))
		}
	}
	kafkaOn := len(cfg.Kafka.Brokers) > 0
	if opts.Analytics && kafkaOn {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		e.collector = analytics.NewCollector(producer, 0, e.Metrics)
		e.closers = append(e.closers, producer.Close)
		execOpts = append(execOpts, executor.WithTracker(e.collector))
	}
	if opts.Consumer && kafkaOn {
		handler := consumer.HandleMessage(e.Index, e.Metrics)
		e.consumer = consumer.New(kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.ProductEvents, handler))
	}

	e.Executor = executor.New(e.Index, execOpts...)
	return e, nil
}

func (e *Engine) loadCatalog(ctx context.Context) error {
	src, closer, err := catalog.OpenSource(ctx, e.Config)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer closer.Close()
	if src == nil {
		e.logger.Info("no catalog source configured, starting empty")
		return nil
	}
	if _, err := catalog.Load(ctx, src, e.Index, e.Config.Catalog.LoadConcurrency); err != nil {
		return err
	}
	return nil
}

func (e *Engine) connectCache(ctx context.Context) *cache.QueryCache {
	client, err := pkgredis.NewClient(ctx, e.Config.Redis)
	if err != nil {
		e.logger.Warn("redis unavailable, search caching disabled", "error", err)
		return nil
	}
	e.closers = append(e.closers, client.Close)
	e.Health.Register("redis", client.HealthCheck())
	e.Cache = cache.New(cache.NewGuardedStore(client, cacheCallTimeout), e.Config.Redis.CacheTTL, e.Metrics)
	e.logger.Info("search cache enabled", "addr", e.Config.Redis.Addr, "ttl", e.Config.Redis.CacheTTL)
	return e.Cache
}

// Start launches the background workers. The consumer runs until ctx ends.
func (e *Engine) Start(ctx context.Context) {
	e.started = true
	if e.collector != nil {
		e.collector.Start(ctx)
	}
	if e.consumer != nil {
		go func() {
			if err := e.consumer.Start(ctx); err != nil {
				e.logger.Error("index consumer stopped", "error", err)
			}
		}()
	}
}

// Close flushes analytics and releases connections in reverse order of
// acquisition.
func (e *Engine) Close() {
	if e.collector != nil && e.started {
		e.collector.Close()
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Error("closing resource", "error", err)
		}
	}
	e.closers = nil
}
