package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rpillai/nsewatch/internal/scheduler"
	"github.com/rpillai/nsewatch/internal/scheduler/jobs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the scheduled refresh jobs",
	Long: `Run the cron scheduler with the daily full refresh and the
intraday news refresh until interrupted.

Example:
  go run ./cmd/nsewatch scheduler
  go run ./cmd/nsewatch scheduler --daily "0 0 13 * * *"`,
	RunE: runScheduler,
}

var (
	dailySchedule string
	newsSchedule  string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.Flags().StringVar(&dailySchedule, "daily", "", "cron expression for the daily refresh")
	schedulerCmd.Flags().StringVar(&newsSchedule, "news", "", "cron expression for the news refresh")
}

func runScheduler(cmd *cobra.Command, args []string) error {
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

	sched := scheduler.New(d.logger)
	if err := sched.AddJob(jobs.NewDailyRefreshJob(collector, d.cache, dailySchedule, d.logger)); err != nil {
		return err
	}
	if err := sched.AddJob(jobs.NewNewsRefreshJob(collector, d.cache, newsSchedule, d.logger)); err != nil {
		return err
	}

	sched.Start()
	fmt.Println("Scheduler running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
