package main

import (
	"context"
	"net/http"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/chairemobilite/trrouting-go/internal/config"
	"github.com/chairemobilite/trrouting-go/internal/httpapi"
	"github.com/chairemobilite/trrouting-go/internal/walkoracle"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP query front-end",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			net, err := loadNetwork(ctx, cfg)
			if err != nil {
				return err
			}

			oraclePool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
			if err != nil {
				return err
			}
			defer oraclePool.Close()
			baseOracle := walkoracle.NewPostGIS(oraclePool)

			rdb := walkoracle.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
			oracle := walkoracle.NewRedisCached(rdb, cfg.Redis.TTL, baseOracle.AccessibleNodes)

			workers := httpapi.NewWorkerPool(net, runtime.NumCPU())
			server := httpapi.NewServer(net, workers, oracle, cfg.Server.QueryTimeout)

			httpServer := &http.Server{
				Addr:         cfg.Server.ServerAddr(),
				Handler:      server.Router(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  cfg.Server.IdleTimeout,
			}

			log.Info().Str("addr", cfg.Server.ServerAddr()).Msg("starting trrouting server")
			return httpServer.ListenAndServe()
		},
	}
}
