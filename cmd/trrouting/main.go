// Command trrouting is the CLI entrypoint: a cobra root command with
// serve/route/batch subcommands, grounded on the cobra-based CLI shape the
// example pack's GTFS tooling (tidbyt-gtfs) pulls spf13/cobra in for, and
// on the teacher's main.go for the server wiring itself (pgxpool setup,
// chi router, graceful startup logging).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chairemobilite/trrouting-go/internal/logging"
)

var (
	logLevel    string
	logPretty   bool
)

func main() {
	root := &cobra.Command{
		Use:   "trrouting",
		Short: "Connection Scan Algorithm transit journey planner",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logLevel, logPretty)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&logPretty, "log-pretty", false, "use human-readable console logging instead of JSON")

	root.AddCommand(newServeCommand())
	root.AddCommand(newRouteCommand())
	root.AddCommand(newBatchCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
