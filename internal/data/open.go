// Package data selects and opens the configured entry store.
package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/personal-finance-ledger/internal/config"
	"github.com/personal-finance-ledger/internal/data/memory"
	"github.com/personal-finance-ledger/internal/data/mongo"
	"github.com/personal-finance-ledger/internal/data/postgres"
	"github.com/personal-finance-ledger/internal/domain/entry"
	"github.com/personal-finance-ledger/internal/platform/persistence"
)

// CloseFunc releases the connections held by an opened store
type CloseFunc func(ctx context.Context) error

// OpenEntryStore connects to the store named by cfg.Store.Driver. Postgres migrations
// (run by persistence.NewPostgresDB) and Mongo indexes are applied before the store is returned.
func OpenEntryStore(ctx context.Context, logger *slog.Logger, cfg *config.Config) (entry.Store, CloseFunc, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		postgresDB, err := persistence.NewPostgresDB(ctx, logger, &cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		closeFn := func(context.Context) error {
			postgresDB.Close()
			return nil
		}
		return postgres.NewEntryStore(logger, postgresDB), closeFn, nil

	case config.StoreDriverMongo:
		mongoDB, err := persistence.NewMongoDB(ctx, logger, &cfg.MongoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize mongodb: %w", err)
		}
		store := mongo.NewEntryStore(logger, mongoDB.Database())
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = mongoDB.Close(ctx)
			return nil, nil, err
		}
		return store, mongoDB.Close, nil

	case config.StoreDriverMemory:
		logger.Warn("Using in-memory entry store; data is lost on restart")
		return memory.NewEntryStore(logger), func(context.Context) error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
