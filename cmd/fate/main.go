// Package main provides the fate command: the dice bot server and its
// maintenance subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/config"
	"github.com/cory-johannsen/fate/internal/observability"
)

// app holds state shared by every subcommand once the root pre-run has loaded it.
type app struct {
	configPath string
	cfg        config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "fate",
		Short: "Dice rolling and character profiles for tabletop play",
		Long: `fate interprets dice commands such as "--roll 2d10+3" or "--roll ws+10 ! * 2"
for players connected over Telnet or Telegram, keeping character profiles,
macros and fast channels in SQLite or PostgreSQL.

Configuration is read from the file given by --config and from FATE_*
environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger, err := observability.NewLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to configuration file (defaults and FATE_* environment only when empty)")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newImportLegacyCmd(a),
		newRollCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
