package main

import (
	"context"
	"fmt"
	"strings"

	"bookcatalog/internal/config"
	"bookcatalog/internal/store"

	"go.uber.org/zap"
)

// openStore connects the configured backend and prepares its indexes or schema.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	db, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		switch cfg.StoreDriver {
		case store.DriverMongo:
			return nil, fmt.Errorf("opening mongo store (%s): %w", redactDSN(cfg.MongoURL), err)
		case store.DriverPostgres:
			return nil, fmt.Errorf("opening postgres store (%s): %w", redactDSN(cfg.DatabaseDSN), err)
		}
		return nil, err
	}

	switch cfg.StoreDriver {
	case store.DriverMongo:
		log.Info("mongo store ready", zap.String("database", cfg.MongoDatabase))
	case store.DriverPostgres:
		log.Info("postgres store ready")
	case store.DriverMemory:
		log.Warn("using in-memory store; data is lost on exit")
	}
	return db, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
