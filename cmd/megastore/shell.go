package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/app"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/metrics"
)

func newShellCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Serve queries from stdin while applying live product events",
		Long: `Loads the configured catalog, then answers one query per input line.
With Kafka brokers configured the index follows the product-events topic and
search events are published for analytics. With Redis enabled results are
cached. With metrics enabled /metrics and /health/{live,ready} are served.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := g.cfg
			e, err := app.Build(ctx, cfg, app.Options{Cache: true, Analytics: true, Consumer: true})
			if err != nil {
				return err
			}
			defer e.Close()

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			e.Start(runCtx)

			if cfg.Metrics.Enabled {
				shutdown := metrics.StartServer(cfg.Metrics.Port, e.Metrics, map[string]http.HandlerFunc{
					"GET /health/live":  e.Health.LiveHandler(),
					"GET /health/ready": e.Health.ReadyHandler(),
				})
				defer func() {
					sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer scancel()
					if err := shutdown(sctx); err != nil {
						slog.Error("metrics server shutdown", "error", err)
					}
				}()
			}

			stats := e.Index.Stats()
			slog.Info("shell ready", "products", stats.Products, "terms", stats.Terms)
			return app.RunShell(runCtx, e.Executor, cmd.InOrStdin(), cmd.OutOrStdout(), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results per query (0 uses search.defaultLimit)")
	return cmd
}
