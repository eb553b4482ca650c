package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/chairemobilite/trrouting-go/internal/cache"
	"github.com/chairemobilite/trrouting-go/internal/config"
	"github.com/chairemobilite/trrouting-go/internal/network"
)

// loadNetwork materializes a Network per cfg.Network.Source: postgres
// (live, via internal/cache.PgLoader), csv (a GTFS-shaped flat-file
// export), or gob (a previously written binary snapshot).
func loadNetwork(ctx context.Context, cfg *config.Config) (*network.Network, error) {
	switch cfg.Network.Source {
	case "csv":
		return cache.LoadCSV(cfg.Network.CSVDir)
	case "gob":
		return cache.ReadGobCache(cfg.Network.GobCachePath)
	case "postgres", "":
		pool, err := connectPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		return cache.NewPgLoader(pool).Load(ctx)
	default:
		return nil, errors.Errorf("unknown network source %q", cfg.Network.Source)
	}
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pgCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "parse postgres dsn")
	}
	pgCfg.MaxConns = cfg.Postgres.MaxConns
	pgCfg.MinConns = cfg.Postgres.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return pool, nil
}
