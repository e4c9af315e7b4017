package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backends accepted by Open.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var ErrUnknownDriver = errors.New("unknown store driver")

type Options struct {
	Driver        string
	MongoURL      string
	MongoDatabase string
	PostgresDSN   string
	Timeout       time.Duration
}

// Open connects the configured backend and ensures its indexes (Mongo) or
// schema (Postgres) are in place.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverMongo:
		db, err := ConnectMongo(ctx, opts.MongoURL, opts.MongoDatabase, opts.Timeout)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureIndexes(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, err
		}
		return db, nil

	case DriverPostgres:
		db, err := ConnectPostgres(ctx, opts.PostgresDSN, opts.Timeout)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, err
		}
		return db, nil

	case DriverMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
}
