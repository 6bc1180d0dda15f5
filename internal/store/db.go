package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ronnakrit11/nextai-ytsummary/internal/config"
)

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Open constructs the Store selected by cfg.Driver, applying migrations
// where the engine needs them. Called once at startup; the caller closes it.
func Open(ctx context.Context, cfg config.StoreConfig, opts ...Option) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(cfg.Database.URL); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return NewPostgresStore(pool, opts...), nil
	case config.DriverSQLite:
		s, err := OpenSQLite(cfg.SQLitePath, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMongo:
		s, err := ConnectMongo(ctx, cfg.Mongo, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return NewMemoryStore(opts...), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
