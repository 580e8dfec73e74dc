package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/app"
)

func newDemoCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Index three sample products and search for \"" + app.DemoQuery + "\"",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *g.cfg
			cfg.Catalog.Source = ""
			e, err := app.Build(cmd.Context(), &cfg, app.Options{})
			if err != nil {
				return err
			}
			defer e.Close()
			for _, p := range app.DemoProducts() {
				e.Index.Add(p)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "searching for: %q\n", app.DemoQuery)
			app.PrintResult(out, e.Executor.Execute(cmd.Context(), app.DemoQuery, 10))
			return nil
		},
	}
}
