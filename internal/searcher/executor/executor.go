// Package executor answers free-text queries against the inverted index:
// tokenize, take one snapshot, rank, then hydrate ranked ids into products.
package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/metrics"
)

// Hit is a ranked product.
type Hit struct {
	Product catalog.Product `json:"product"`
	Score   float64         `json:"score"`
}

type SearchResult struct {
	Query      string   `json:"query"`
	Terms      []string `json:"terms"`
	TotalHits  int      `json:"total_hits"`
	Hits       []Hit    `json:"hits"`
	Generation uint64   `json:"generation"`
}

// Index is the read side of index.MemoryIndex.
type Index interface {
	Snapshot() *index.Snapshot
	Get(id uint32) (catalog.Product, bool)
	Generation() uint64
	ID() string
	Tokenizer() *tokenizer.Tokenizer
}

// ResultCache memoises results per (terms, limit, index instance, index
// generation).
type ResultCache interface {
	GetOrCompute(ctx context.Context, terms []string, limit int, indexID string, generation uint64,
		compute func() *SearchResult) (*SearchResult, bool)
}

// Tracker receives one analytics event per executed query.
type Tracker interface {
	Track(event analytics.SearchEvent)
}

type Executor struct {
	idx          Index
	params       ranker.Params
	defaultLimit int
	maxResults   int
	cache        ResultCache
	tracker      Tracker
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

type Option func(*Executor)

func WithParams(p ranker.Params) Option {
	return func(e *Executor) { e.params = p }
}

// WithLimits sets the limit used when Execute gets 0 and the cap applied to
// larger requests.
func WithLimits(defaultLimit, maxResults int) Option {
	return func(e *Executor) {
		if defaultLimit > 0 {
			e.defaultLimit = defaultLimit
		}
		if maxResults >= e.defaultLimit {
			e.maxResults = maxResults
		}
	}
}

func WithCache(c ResultCache) Option {
	return func(e *Executor) { e.cache = c }
}

func WithTracker(t Tracker) Option {
	return func(e *Executor) { e.tracker = t }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

func New(idx Index, opts ...Option) *Executor {
	e := &Executor{
		idx:          idx,
		params:       ranker.Params{Boost: ranker.DefaultBoost},
		defaultLimit: 10,
		maxResults:   100,
		logger:       slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns up to limit products ranked by accumulated term frequency.
// An empty or all-stopword query, a limit <= 0, or a query whose terms are
// all out of vocabulary yields an empty slice.
//
// Ranking runs against a single snapshot; products are then looked up in
// the live index. A product removed between the two steps is dropped from
// the result rather than reported.
func (e *Executor) Search(query string, limit int) []Hit {
	terms := e.idx.Tokenizer().Tokenize(query)
	if len(terms) == 0 || limit <= 0 {
		return []Hit{}
	}
	return e.run(terms, limit).Hits
}

// Execute is Search for interactive callers: limit 0 selects the default
// limit and larger limits are capped. Results go through the result cache
// when one is configured, and the query is logged, measured and tracked.
func (e *Executor) Execute(ctx context.Context, query string, limit int) *SearchResult {
	start := time.Now()
	log := logger.FromContext(ctx)

	limit = e.clampLimit(limit)
	terms := e.idx.Tokenizer().Tokenize(query)
	if len(terms) == 0 || limit <= 0 {
		e.metrics.ObserveSearch("empty_query", "none", time.Since(start).Seconds(), 0)
		return &SearchResult{
			Query:      query,
			Terms:      terms,
			Hits:       []Hit{},
			Generation: e.idx.Generation(),
		}
	}

	var result *SearchResult
	cacheHit := false
	cacheStatus := "none"
	if e.cache != nil {
		result, cacheHit = e.cache.GetOrCompute(ctx, terms, limit, e.idx.ID(), e.idx.Generation(), func() *SearchResult {
			return e.run(terms, limit)
		})
		cacheStatus = "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
	} else {
		result = e.run(terms, limit)
	}

	// Cached results are shared between callers; copy before stamping the
	// caller's own query and term order.
	out := *result
	out.Query = query
	out.Terms = terms

	latency := time.Since(start)
	resultType := "hit"
	if len(out.Hits) == 0 {
		resultType = "zero_result"
	}
	e.metrics.ObserveSearch(resultType, cacheStatus, latency.Seconds(), len(out.Hits))

	log.Info("search completed",
		"query", query,
		"terms", terms,
		"total_hits", out.TotalHits,
		"returned", len(out.Hits),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if e.tracker != nil {
		eventType := analytics.EventSearch
		if len(out.Hits) == 0 {
			eventType = analytics.EventZeroResult
		}
		e.tracker.Track(analytics.SearchEvent{
			Type:       eventType,
			Query:      query,
			Terms:      terms,
			TotalHits:  out.TotalHits,
			Returned:   len(out.Hits),
			LatencyMs:  latency.Milliseconds(),
			CacheHit:   cacheHit,
			Generation: out.Generation,
			Timestamp:  time.Now().UTC(),
			QueryID:    logger.QueryID(ctx),
		})
	}
	return &out
}

// run ranks terms against one snapshot and hydrates the survivors.
func (e *Executor) run(terms []string, limit int) *SearchResult {
	snap := e.idx.Snapshot()
	ranked, total := ranker.Rank(snap, terms, e.params, limit)

	hits := make([]Hit, 0, len(ranked))
	dropped := 0
	for _, doc := range ranked {
		p, ok := e.idx.Get(doc.ProductID)
		if !ok {
			dropped++
			continue
		}
		hits = append(hits, Hit{Product: p, Score: doc.Score})
	}
	if dropped > 0 {
		e.metrics.HydrationDrops(dropped)
		e.logger.Debug("ranked products vanished before hydration",
			"dropped", dropped,
			"snapshot_generation", snap.Generation(),
		)
	}
	return &SearchResult{
		Terms:      terms,
		TotalHits:  total,
		Hits:       hits,
		Generation: snap.Generation(),
	}
}

func (e *Executor) clampLimit(limit int) int {
	switch {
	case limit == 0:
		return e.defaultLimit
	case limit > e.maxResults:
		return e.maxResults
	default:
		return limit
	}
}
