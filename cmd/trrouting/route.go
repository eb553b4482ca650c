package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/chairemobilite/trrouting-go/internal/config"
	"github.com/chairemobilite/trrouting-go/internal/csa"
	"github.com/chairemobilite/trrouting-go/internal/itinerary"
	"github.com/chairemobilite/trrouting-go/internal/query"
	"github.com/chairemobilite/trrouting-go/internal/walkoracle"
)

func newRouteCommand() *cobra.Command {
	var fromLon, fromLat, toLon, toLat float64
	var timeOfTrip int
	var reverse bool

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Compute a single origin-destination journey and print it as JSON",
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

			pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
			if err != nil {
				return err
			}
			defer pool.Close()
			oracle := walkoracle.NewPostGIS(pool)

			timeType := query.TimeTypeDeparture
			if reverse {
				timeType = query.TimeTypeArrival
			}

			scratch := query.NewScratch(net)
			params := query.Parameters{
				Origin:            query.Point{Lon: fromLon, Lat: fromLat},
				Destination:       query.Point{Lon: toLon, Lat: toLat},
				HasOrigin:         true,
				HasDest:           true,
				TimeOfTripSeconds: timeOfTrip,
				HasTimeOfTrip:     true,
				TimeType:          timeType,
			}.WithDefaults()

			if err := csa.Reset(net, scratch, params, oracle, true, true); err != nil {
				return err
			}

			var it *itinerary.Itinerary
			if params.IsForward() {
				egressNode, err := csa.RunForward(ctx, net, scratch, params)
				if err != nil {
					return err
				}
				it = itinerary.FromForward(net, scratch, egressNode, scratch.DepartureTimeSeconds)
			} else {
				accessNode, err := csa.RunReverse(ctx, net, scratch, params)
				if err != nil {
					return err
				}
				it = itinerary.FromReverse(net, scratch, accessNode, scratch.ArrivalTimeSeconds)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(it)
		},
	}

	cmd.Flags().Float64Var(&fromLon, "from-lon", 0, "origin longitude")
	cmd.Flags().Float64Var(&fromLat, "from-lat", 0, "origin latitude")
	cmd.Flags().Float64Var(&toLon, "to-lon", 0, "destination longitude")
	cmd.Flags().Float64Var(&toLat, "to-lat", 0, "destination latitude")
	cmd.Flags().IntVar(&timeOfTrip, "time", 8*3600+30*60, "departure (or, with --reverse, arrival) time in seconds since midnight")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "compute the latest-departure journey for an arrival time instead of earliest-arrival")
	cmd.MarkFlagRequired("from-lon")
	cmd.MarkFlagRequired("from-lat")
	cmd.MarkFlagRequired("to-lon")
	cmd.MarkFlagRequired("to-lat")

	return cmd
}
