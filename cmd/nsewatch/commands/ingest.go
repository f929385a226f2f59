package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the ingestion pipeline (prices, news, scores)",
	Long: `Pull daily bars and headlines for the configured universe,
store them, and recompute today's watch scores.

Example:
  go run ./cmd/nsewatch ingest
  go run ./cmd/nsewatch ingest --only prices`,
	RunE: runIngest,
}

var ingestOnly string

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestOnly, "only", "", "restrict to one step: prices|news|scores")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	collector := d.collector()

	switch ingestOnly {
	case "":
		if err := collector.RunAll(ctx); err != nil {
			return err
		}
	case "prices":
		if _, err := collector.IngestPrices(ctx); err != nil {
			return err
		}
	case "news":
		if _, err := collector.IngestNews(ctx); err != nil {
			return err
		}
	case "scores":
		if _, err := collector.ComputeScores(ctx, time.Now().UTC()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown step %q: want prices, news, or scores", ingestOnly)
	}

	fmt.Println("Ingestion complete")
	return nil
}
