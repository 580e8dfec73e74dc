package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Adder is the write side of the index used for bulk loading.
type Adder interface {
	Add(p Product)
}

type LoadStats struct {
	Loaded  int
	Skipped int
}

// Load streams src into idx using concurrency workers. Products are routed
// to workers by id, so repeated ids are applied in source order and the
// last occurrence wins. Invalid products are logged and skipped; a source
// error aborts the load.
func Load(ctx context.Context, src Source, idx Adder, concurrency int) (LoadStats, error) {
	logger := slog.Default().With("component", "catalog-loader", "source", src.Name())
	if concurrency <= 0 {
		concurrency = 1
	}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	queues := make([]chan Product, concurrency)
	for i := range queues {
		q := make(chan Product, 64)
		queues[i] = q
		g.Go(func() error {
			for p := range q {
				idx.Add(p)
			}
			return nil
		})
	}

	var stats LoadStats
	scanErr := src.Scan(gctx, func(p Product) error {
		if err := p.Validate(); err != nil {
			stats.Skipped++
			logger.Warn("skipping invalid product", "product_id", p.ID, "error", err)
			return nil
		}
		select {
		case queues[int(p.ID%uint32(concurrency))] <- p:
			stats.Loaded++
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})
	for _, q := range queues {
		close(q)
	}
	if err := errors.Join(scanErr, g.Wait()); err != nil {
		return stats, fmt.Errorf("loading catalog from %s: %w", src.Name(), err)
	}

	logger.Info("catalog loaded",
		"loaded", stats.Loaded,
		"skipped", stats.Skipped,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return stats, nil
}
