package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recompute today's scores from stored data",
	Long: `Score every ticker from prices and headlines already in the
store, without hitting any upstream API. Useful after tuning the
universe or re-running news ingestion.

Example:
  go run ./cmd/nsewatch score`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	summary, err := d.collector().ComputeScores(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	fmt.Printf("Scored %d tickers (%d skipped)\n", summary.Succeeded, summary.Failed)
	return nil
}
