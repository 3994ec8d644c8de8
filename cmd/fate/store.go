package main

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/fate/internal/config"
	"github.com/cory-johannsen/fate/internal/game/dice"
	"github.com/cory-johannsen/fate/internal/storage"
	"github.com/cory-johannsen/fate/internal/storage/postgres"
	"github.com/cory-johannsen/fate/internal/storage/sqlite"
	"go.uber.org/zap"
)

// migrateDatabase brings the configured database's schema up to date.
func migrateDatabase(cfg config.DatabaseConfig) (uint, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Migrate(cfg.DSN())
	case config.DriverSQLite:
		return sqlite.Migrate(cfg.SQLitePath)
	default:
		return 0, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// openStore connects to the configured database.
//
// Precondition: the schema must be migrated.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg, logger.Named("postgres"))
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(pool), nil
	case config.DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func diceSource(cfg config.BotConfig) dice.Source {
	if cfg.Seed != 0 {
		return dice.NewSeededSource(cfg.Seed)
	}
	return dice.NewCryptoSource()
}
