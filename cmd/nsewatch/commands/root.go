package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "nsewatch",
	Short: "NSE/BSE news + EOD stock watchlist service",
	Long: `nsewatch ingests daily prices and news headlines for a fixed
NSE/BSE ticker universe, computes heuristic watch scores, and serves
the ranked results over a small read API.

Examples:
  go run ./cmd/nsewatch api
  go run ./cmd/nsewatch ingest
  go run ./cmd/nsewatch score
  go run ./cmd/nsewatch watchlist
  go run ./cmd/nsewatch scheduler`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
