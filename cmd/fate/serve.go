package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/bot"
	"github.com/cory-johannsen/fate/internal/frontend/handlers"
	"github.com/cory-johannsen/fate/internal/frontend/telegram"
	"github.com/cory-johannsen/fate/internal/frontend/telnet"
	"github.com/cory-johannsen/fate/internal/game/parser"
	"github.com/cory-johannsen/fate/internal/game/roll"
	"github.com/cory-johannsen/fate/internal/observability"
	"github.com/cory-johannsen/fate/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var migrateFirst bool
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Run the bot on every enabled frontend",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd, migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func (a *app) serve(cmd *cobra.Command, migrateFirst bool) error {
	start := time.Now()
	ctx := cmd.Context()
	cfg, logger := a.cfg, a.logger

	if !cfg.Telnet.Enabled && !cfg.Telegram.Enabled {
		return errors.New("no frontend enabled: set telnet.enabled or telegram.enabled")
	}
	if migrateFirst {
		version, err := migrateDatabase(cfg.Database)
		if err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		logger.Info("schema ready", zap.String("driver", cfg.Database.Driver), zap.Uint("version", version))
	}

	store, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	roller := roll.NewLoggedRoller(diceSource(cfg.Bot), logger.Named("roll"))
	p := parser.New(observability.ParserLogger(logger, cfg.Bot.ParserDebug))
	svc := bot.New(store, p, roller, cfg.Bot.Prefix, logger.Named("bot"))

	lc := server.NewLifecycle(logger)
	if cfg.Telnet.Enabled {
		auth := handlers.NewAuthHandler(store, svc, handlers.NewHub(), cfg.Telnet.DefaultChannel, logger.Named("telnet"))
		acc := telnet.NewAcceptor(cfg.Telnet, auth, logger.Named("telnet"))
		lc.Add("telnet", server.ServiceFunc(acc.Serve))
	}
	if cfg.Telegram.Enabled {
		tg, err := telegram.New(cfg.Telegram, svc, logger.Named("telegram"))
		if err != nil {
			return err
		}
		lc.Add("telegram", server.ServiceFunc(tg.Run))
	}

	logger.Info("fate starting",
		zap.String("prefix", cfg.Bot.Prefix),
		zap.Bool("telnet", cfg.Telnet.Enabled),
		zap.Bool("telegram", cfg.Telegram.Enabled),
		zap.Duration("startup", time.Since(start)),
	)
	return lc.Run(ctx)
}
