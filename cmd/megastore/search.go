package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/app"
)

func newSearchCmd(g *globals) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Load the configured catalog and run one query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.Build(cmd.Context(), g.cfg, app.Options{Cache: true})
			if err != nil {
				return err
			}
			defer e.Close()
			query := strings.Join(args, " ")
			app.PrintResult(cmd.OutOrStdout(), e.Executor.Execute(cmd.Context(), query, limit))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (0 uses search.defaultLimit)")
	return cmd
}
