package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/chairemobilite/trrouting-go/internal/batch"
	"github.com/chairemobilite/trrouting-go/internal/config"
	"github.com/chairemobilite/trrouting-go/internal/query"
	"github.com/chairemobilite/trrouting-go/internal/walkoracle"
)

func newBatchCommand() *cobra.Command {
	var batchesCount, batchNumber int
	var sampleRatio float64
	var seed uint64
	var calculateProfiles bool
	var outPath string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Route every OD trip in the loaded network's demand survey and report aggregated demand",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if batchesCount == 0 {
				batchesCount = cfg.Batch.DefaultBatchesCount
			}
			if sampleRatio == 0 {
				sampleRatio = cfg.Batch.DefaultSampleRatio
			}

			ctx := context.Background()
			net, err := loadNetwork(ctx, cfg)
			if err != nil {
				return err
			}

			pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
			if err != nil {
				return err
			}
			defer pool.Close()
			oracle := walkoracle.NewPostGIS(pool)

			scratch := query.NewScratch(net)
			params := query.BatchParameters{
				Base:               query.Parameters{TimeType: query.TimeTypeDeparture}.WithDefaults(),
				OdTripsSampleRatio: sampleRatio,
				BatchesCount:       batchesCount,
				BatchNumber:        batchNumber,
				Seed:               seed,
				CalculateProfiles:  calculateProfiles,
			}

			summary, err := batch.Run(ctx, net, scratch, oracle, params)
			if err != nil {
				return err
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().IntVar(&batchesCount, "batches-count", 1, "total number of shards this run is one of")
	cmd.Flags().IntVar(&batchNumber, "batch-number", 1, "1-based shard number to process")
	cmd.Flags().Float64Var(&sampleRatio, "sample-ratio", 1.0, "fraction of the OD population to sample before sharding")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "deterministic shuffle seed")
	cmd.Flags().BoolVar(&calculateProfiles, "profiles", false, "accumulate per-line/per-path hourly demand profiles")
	cmd.Flags().StringVar(&outPath, "out", "", "output file path (default: stdout)")

	return cmd
}
