package main

import (
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/logger"
)

// globals holds the persistent flags and the config they resolve to.
type globals struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "megastore",
		Short:        "In-memory product search over a MegaStore catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			if g.logLevel != "" {
				cfg.Logging.Level = g.logLevel
			}
			// results go to stdout, logs to stderr
			logger.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			g.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "path to YAML config file (defaults apply when empty)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newDemoCmd(g),
		newSearchCmd(g),
		newShellCmd(g),
		newPublishCmd(g),
	)
	return root
}
