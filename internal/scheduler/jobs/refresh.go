package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rpillai/nsewatch/internal/cache"
	"github.com/rpillai/nsewatch/internal/ingest"
	"github.com/rpillai/nsewatch/pkg/logger"
)

// DailyRefreshJob runs the full pipeline after market close: ingest
// prices, ingest news, recompute scores, then drop the serving cache
// so the next API read sees fresh data.
type DailyRefreshJob struct {
	collector *ingest.Collector
	cache     *cache.Cache
	logger    *logger.Logger
	schedule  string
}

// NewDailyRefreshJob creates the job. An empty schedule defaults to
// 13:00 UTC (18:30 IST), about three hours after NSE close.
func NewDailyRefreshJob(collector *ingest.Collector, c *cache.Cache, schedule string, log *logger.Logger) *DailyRefreshJob {
	if schedule == "" {
		schedule = "0 0 13 * * *"
	}
	return &DailyRefreshJob{
		collector: collector,
		cache:     c,
		logger:    log.WithField("job", "daily_refresh"),
		schedule:  schedule,
	}
}

func (j *DailyRefreshJob) Name() string     { return "daily_refresh" }
func (j *DailyRefreshJob) Schedule() string { return j.schedule }

func (j *DailyRefreshJob) Run(ctx context.Context) error {
	start := time.Now()

	if err := j.collector.RunAll(ctx); err != nil {
		return fmt.Errorf("daily refresh: %w", err)
	}

	if j.cache != nil {
		j.cache.InvalidateAll()
	}

	j.logger.WithField("duration", time.Since(start)).Info("Daily refresh completed")
	return nil
}

// NewsRefreshJob re-pulls headlines and rescores intraday so the
// watchlist picks up catalysts between daily price runs. Prices are
// left alone: they only change after close.
type NewsRefreshJob struct {
	collector *ingest.Collector
	cache     *cache.Cache
	logger    *logger.Logger
	schedule  string
}

// NewNewsRefreshJob creates the job, defaulting to every 30 minutes.
func NewNewsRefreshJob(collector *ingest.Collector, c *cache.Cache, schedule string, log *logger.Logger) *NewsRefreshJob {
	if schedule == "" {
		schedule = "0 */30 * * * *"
	}
	return &NewsRefreshJob{
		collector: collector,
		cache:     c,
		logger:    log.WithField("job", "news_refresh"),
		schedule:  schedule,
	}
}

func (j *NewsRefreshJob) Name() string     { return "news_refresh" }
func (j *NewsRefreshJob) Schedule() string { return j.schedule }

func (j *NewsRefreshJob) Run(ctx context.Context) error {
	if _, err := j.collector.IngestNews(ctx); err != nil {
		return fmt.Errorf("news refresh: %w", err)
	}
	if _, err := j.collector.ComputeScores(ctx, time.Now().UTC()); err != nil {
		return fmt.Errorf("news refresh rescore: %w", err)
	}
	if j.cache != nil {
		j.cache.InvalidateAll()
	}
	return nil
}
