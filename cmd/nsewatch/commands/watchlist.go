package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpillai/nsewatch/internal/watchlist"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Score the universe live and print the ranked watchlist",
	Long: `Run a live scoring pass: fetch prices and headlines for each
ticker (through the temporal cache), score, and print the ranking.
Nothing is written to the store.

Example:
  go run ./cmd/nsewatch watchlist
  go run ./cmd/nsewatch watchlist --limit 10`,
	RunE: runWatchlist,
}

var watchlistLimit int

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.Flags().IntVar(&watchlistLimit, "limit", 20, "rows to print")
}

func runWatchlist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	builder := watchlist.NewBuilder(
		d.universe,
		d.market,
		d.news,
		d.engine,
		d.cache,
		nil,
		watchlist.Config{
			LookbackDays:    d.cfg.Scoring.LookbackDays,
			NewsWindowHours: d.cfg.Scoring.NewsWindowHours,
			PriceTTL:        d.cfg.Cache.PriceTTL,
			NewsTTL:         d.cfg.Cache.NewsTTL,
			Limit:           watchlistLimit,
		},
		d.logger,
	)

	report, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Watchlist for %s (%d scored, %d failed)\n\n",
		report.Date.Format("2006-01-02"), report.Succeeded, report.Failed)

	for i, r := range report.Results {
		fmt.Printf("%2d. %-14s %8.2f  %s\n", i+1, r.Ticker, r.FinalScore, r.Label)
	}

	for _, f := range report.Failures {
		fmt.Printf("    skipped %s: %s\n", f.Ticker, f.Error)
	}
	return nil
}
