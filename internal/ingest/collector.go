package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rpillai/nsewatch/internal/contracts"
	"github.com/rpillai/nsewatch/internal/scoring"
	"github.com/rpillai/nsewatch/internal/store"
	"github.com/rpillai/nsewatch/internal/universe"
	"github.com/rpillai/nsewatch/pkg/logger"
	"github.com/rpillai/nsewatch/pkg/redis"
)

// Config holds collection pacing knobs. The price provider throttles
// aggressively, so price ingestion runs in small chunks with sleeps;
// news runs on a worker pool.
type Config struct {
	// ChunkSize is how many tickers are fetched between sleeps.
	ChunkSize int

	// SleepBetween is the pause between price chunks.
	SleepBetween time.Duration

	// MaxRetries bounds retries per ticker after a rate limit.
	MaxRetries int

	// BackoffMultiplier scales the rate-limit backoff:
	// wait = SleepBetween * attempt * BackoffMultiplier.
	BackoffMultiplier int

	// Workers is the news worker pool size.
	Workers int

	// LookbackDays is the price history window to ingest.
	LookbackDays int

	// NewsWindowHours and NewsLimit bound the headline fetch.
	NewsWindowHours int
	NewsLimit       int
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 5
	}
	if c.SleepBetween <= 0 {
		c.SleepBetween = 2 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = 3
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.LookbackDays <= 0 {
		c.LookbackDays = 120
	}
	if c.NewsWindowHours <= 0 {
		c.NewsWindowHours = 48
	}
	if c.NewsLimit <= 0 {
		c.NewsLimit = 20
	}
	return c
}

// Result is the per-ticker outcome of an ingestion step.
type Result struct {
	Ticker string
	Count  int
	Error  error
}

// Summary aggregates one ingestion or scoring step.
type Summary struct {
	Succeeded int
	Failed    int
	Results   []Result
}

// PriceSource yields daily bars per ticker.
type PriceSource interface {
	Fetch(ctx context.Context, ticker string, windowDays int) (contracts.PriceSeries, error)
}

// NewsSource yields scored headlines per ticker.
type NewsSource interface {
	Fetch(ctx context.Context, ticker string, windowHours, limit int) ([]contracts.NewsItem, error)
}

// Collector orchestrates the daily pipeline: pull prices, pull news,
// compute scores, all against the store.
type Collector struct {
	market   PriceSource
	news     NewsSource
	engine   *scoring.Engine
	store    store.Store
	universe *universe.Universe
	limiter  *redis.RateLimiter
	logger   *logger.Logger
	cfg      Config
}

// NewCollector wires a Collector. limiter may be nil; when present,
// price fetches wait on it so multiple instances share one upstream
// budget.
func NewCollector(
	market PriceSource,
	newsClient NewsSource,
	engine *scoring.Engine,
	st store.Store,
	u *universe.Universe,
	limiter *redis.RateLimiter,
	cfg Config,
	log *logger.Logger,
) *Collector {
	return &Collector{
		market:   market,
		news:     newsClient,
		engine:   engine,
		store:    st,
		universe: u,
		limiter:  limiter,
		logger:   log.WithField("module", "ingest"),
		cfg:      cfg.withDefaults(),
	}
}

// IngestPrices pulls daily bars for the whole universe and upserts
// them. Tickers run sequentially in chunks with sleeps between, and a
// rate-limited ticker is retried with a growing backoff before being
// abandoned for this run.
func (c *Collector) IngestPrices(ctx context.Context) (*Summary, error) {
	tickers := c.universe.Tickers
	c.logger.WithFields(map[string]interface{}{
		"tickers":  len(tickers),
		"lookback": c.cfg.LookbackDays,
	}).Info("Starting price ingestion")

	summary := &Summary{}
	for i, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := c.ingestTickerPrices(ctx, ticker)
		summary.Results = append(summary.Results, result)
		if result.Error != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}

		// Pause at chunk boundaries to stay under the provider's radar
		if (i+1)%c.cfg.ChunkSize == 0 && i+1 < len(tickers) {
			if err := sleepCtx(ctx, c.cfg.SleepBetween); err != nil {
				return summary, err
			}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": summary.Succeeded,
		"failed":  summary.Failed,
	}).Info("Price ingestion completed")

	return summary, nil
}

// ingestTickerPrices fetches and stores one ticker, retrying rate
// limits with wait = SleepBetween * attempt * BackoffMultiplier.
func (c *Collector) ingestTickerPrices(ctx context.Context, ticker string) Result {
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, redis.MarketRateLimit); err != nil {
				return Result{Ticker: ticker, Error: err}
			}
		}

		series, err := c.market.Fetch(ctx, ticker, c.cfg.LookbackDays)
		if err != nil {
			if errors.Is(err, contracts.ErrRateLimited) && attempt < c.cfg.MaxRetries {
				wait := c.cfg.SleepBetween * time.Duration(attempt) * time.Duration(c.cfg.BackoffMultiplier)
				c.logger.WithFields(map[string]interface{}{
					"ticker":  ticker,
					"attempt": attempt,
					"wait":    wait.String(),
				}).Warn("Rate limited, backing off")
				if err := sleepCtx(ctx, wait); err != nil {
					return Result{Ticker: ticker, Error: err}
				}
				continue
			}
			c.logger.WithError(err).WithField("ticker", ticker).Error("Failed to fetch prices")
			return Result{Ticker: ticker, Error: err}
		}

		if err := c.store.PutPrices(ctx, ticker, series); err != nil {
			c.logger.WithError(err).WithField("ticker", ticker).Error("Failed to save prices")
			return Result{Ticker: ticker, Count: len(series), Error: err}
		}

		c.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"count":  len(series),
		}).Debug("Ingested prices")
		return Result{Ticker: ticker, Count: len(series)}
	}
	return Result{Ticker: ticker, Error: contracts.ErrRateLimited}
}

// IngestNews pulls and stores headlines for the whole universe on a
// worker pool. The news client soft-degrades upstream trouble to an
// empty list, so failures here are storage errors only.
func (c *Collector) IngestNews(ctx context.Context) (*Summary, error) {
	tickers := c.universe.Tickers
	c.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"workers": c.cfg.Workers,
	}).Info("Starting news ingestion")

	tickerCh := make(chan string, len(tickers))
	resultCh := make(chan Result, len(tickers))

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.newsWorker(ctx, tickerCh, resultCh)
		}()
	}

	for _, ticker := range tickers {
		tickerCh <- ticker
	}
	close(tickerCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	summary := &Summary{}
	for result := range resultCh {
		summary.Results = append(summary.Results, result)
		if result.Error != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": summary.Succeeded,
		"failed":  summary.Failed,
	}).Info("News ingestion completed")

	return summary, ctx.Err()
}

func (c *Collector) newsWorker(ctx context.Context, tickerCh <-chan string, resultCh chan<- Result) {
	for ticker := range tickerCh {
		select {
		case <-ctx.Done():
			resultCh <- Result{Ticker: ticker, Error: ctx.Err()}
			return
		default:
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, redis.NewsRateLimit); err != nil {
				resultCh <- Result{Ticker: ticker, Error: err}
				return
			}
		}

		items, err := c.news.Fetch(ctx, ticker, c.cfg.NewsWindowHours, c.cfg.NewsLimit)
		if err != nil {
			resultCh <- Result{Ticker: ticker, Error: err}
			continue
		}

		if err := c.store.PutNews(ctx, ticker, items); err != nil {
			c.logger.WithError(err).WithField("ticker", ticker).Error("Failed to save news")
			resultCh <- Result{Ticker: ticker, Count: len(items), Error: err}
			continue
		}

		resultCh <- Result{Ticker: ticker, Count: len(items)}
	}
}

// ComputeScores scores every ticker from stored prices and headlines
// and upserts the results for forDate. Tickers with too little
// history are skipped, matching the fetch-side minimum.
func (c *Collector) ComputeScores(ctx context.Context, forDate time.Time) (*Summary, error) {
	now := time.Now().UTC()
	since := now.Add(-time.Duration(c.cfg.NewsWindowHours) * time.Hour)
	date := store.DateKey(forDate)

	summary := &Summary{}
	for _, ticker := range c.universe.Tickers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := func() Result {
			series, err := c.store.GetPrices(ctx, ticker, c.cfg.LookbackDays)
			if err != nil {
				return Result{Ticker: ticker, Error: fmt.Errorf("load prices: %w", err)}
			}

			items, err := c.store.GetRecentNews(ctx, ticker, since, c.cfg.NewsLimit)
			if err != nil {
				return Result{Ticker: ticker, Error: fmt.Errorf("load news: %w", err)}
			}

			score, err := c.engine.Score(ticker, date, now, series, items)
			if err != nil {
				return Result{Ticker: ticker, Error: err}
			}

			if err := c.store.PutScore(ctx, score); err != nil {
				return Result{Ticker: ticker, Error: fmt.Errorf("save score: %w", err)}
			}
			return Result{Ticker: ticker, Count: 1}
		}()

		summary.Results = append(summary.Results, result)
		if result.Error != nil {
			summary.Failed++
			c.logger.WithError(result.Error).WithField("ticker", ticker).Warn("Ticker not scored")
		} else {
			summary.Succeeded++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"success": summary.Succeeded,
		"failed":  summary.Failed,
	}).Info("Score computation completed")

	return summary, nil
}

// RunAll executes the full pipeline in order: prices, news, scores.
func (c *Collector) RunAll(ctx context.Context) error {
	if _, err := c.IngestPrices(ctx); err != nil {
		return fmt.Errorf("ingest prices: %w", err)
	}
	if _, err := c.IngestNews(ctx); err != nil {
		return fmt.Errorf("ingest news: %w", err)
	}
	if _, err := c.ComputeScores(ctx, time.Now().UTC()); err != nil {
		return fmt.Errorf("compute scores: %w", err)
	}
	return nil
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
