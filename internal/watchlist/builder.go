package watchlist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rpillai/nsewatch/internal/cache"
	"github.com/rpillai/nsewatch/internal/contracts"
	"github.com/rpillai/nsewatch/internal/scoring"
	"github.com/rpillai/nsewatch/internal/universe"
	"github.com/rpillai/nsewatch/pkg/logger"
)

var (
	// ErrNoUniverse means there are no tickers to score.
	ErrNoUniverse = errors.New("watchlist: universe is empty")

	// ErrNoData means every ticker in the universe failed.
	ErrNoData = errors.New("watchlist: no ticker produced a score")
)

// maxReportedFailures bounds the failure list in a Report. Past a
// handful the per-ticker detail stops being useful; the counters
// still carry the full tally.
const maxReportedFailures = 10

// PriceSource yields daily bars per ticker. Implemented by the
// market data client; the cache wraps it transparently.
type PriceSource interface {
	Fetch(ctx context.Context, ticker string, windowDays int) (contracts.PriceSeries, error)
}

// NewsSource yields scored headlines per ticker.
type NewsSource interface {
	Fetch(ctx context.Context, ticker string, windowHours, limit int) ([]contracts.NewsItem, error)
}

// Config holds per-build parameters.
type Config struct {
	// LookbackDays is the price window fetched per ticker.
	LookbackDays int

	// NewsWindowHours bounds headlines counted toward the score.
	NewsWindowHours int

	// NewsLimit caps headlines fetched per ticker.
	NewsLimit int

	// Limit truncates the ranked results; 0 keeps all.
	Limit int

	// PriceTTL and NewsTTL bound how stale cached fetches may be.
	PriceTTL time.Duration
	NewsTTL  time.Duration
}

// Failure records one ticker that could not be scored.
type Failure struct {
	Ticker string `json:"ticker"`
	Error  string `json:"error"`
}

// Report is the outcome of one scoring pass. Results are ordered by
// final score descending.
type Report struct {
	Date      time.Time               `json:"date"`
	Attempted int                     `json:"attempted"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
	Failures  []Failure               `json:"failures,omitempty"`
	Results   []contracts.ScoreResult `json:"results"`
}

// Builder runs a scoring pass over the universe: fetch prices and
// headlines per ticker (through the cache), score each, rank the
// results. One ticker failing never aborts the pass.
type Builder struct {
	universe *universe.Universe
	prices   PriceSource
	news     NewsSource
	engine   *scoring.Engine
	cache    *cache.Cache
	clock    cache.Clock
	logger   *logger.Logger
	cfg      Config
}

// NewBuilder wires a Builder. A nil clock uses time.Now.
func NewBuilder(
	u *universe.Universe,
	prices PriceSource,
	news NewsSource,
	engine *scoring.Engine,
	c *cache.Cache,
	clock cache.Clock,
	cfg Config,
	log *logger.Logger,
) *Builder {
	if clock == nil {
		clock = time.Now
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 120
	}
	if cfg.NewsWindowHours <= 0 {
		cfg.NewsWindowHours = 48
	}
	if cfg.NewsLimit <= 0 {
		cfg.NewsLimit = 20
	}
	return &Builder{
		universe: u,
		prices:   prices,
		news:     news,
		engine:   engine,
		cache:    c,
		clock:    clock,
		logger:   log,
		cfg:      cfg,
	}
}

// Build scores every ticker in the universe and returns the ranked
// report. Tickers are processed sequentially: the upstream price API
// tolerates a steady trickle far better than a burst, and a full
// universe pass over cached entries is fast anyway.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	if b.universe.Size() == 0 {
		return nil, ErrNoUniverse
	}

	now := b.clock().UTC()
	report := &Report{
		Date:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Attempted: b.universe.Size(),
	}

	for _, ticker := range b.universe.Tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := b.scoreTicker(ctx, ticker, report.Date, now)
		if err != nil {
			report.Failed++
			if len(report.Failures) < maxReportedFailures {
				report.Failures = append(report.Failures, Failure{Ticker: ticker, Error: err.Error()})
			}
			b.logger.WithError(err).WithField("ticker", ticker).Warn("Ticker skipped in scoring pass")
			continue
		}

		report.Succeeded++
		report.Results = append(report.Results, result)
	}

	if report.Succeeded == 0 {
		return nil, fmt.Errorf("%w: %d tickers attempted", ErrNoData, report.Attempted)
	}

	// Stable sort keeps universe order on score ties.
	sort.SliceStable(report.Results, func(i, j int) bool {
		return report.Results[i].FinalScore > report.Results[j].FinalScore
	})
	if b.cfg.Limit > 0 && len(report.Results) > b.cfg.Limit {
		report.Results = report.Results[:b.cfg.Limit]
	}

	b.logger.WithFields(map[string]interface{}{
		"attempted": report.Attempted,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("Scoring pass complete")

	return report, nil
}

// scoreTicker fetches inputs for one ticker through the cache and
// scores it.
func (b *Builder) scoreTicker(ctx context.Context, ticker string, date, now time.Time) (contracts.ScoreResult, error) {
	priceKey := fmt.Sprintf("prices:%s:%d", ticker, b.cfg.LookbackDays)
	pricesVal, err := b.cache.GetOrFetch(ctx, priceKey, b.cfg.PriceTTL, func(ctx context.Context) (interface{}, error) {
		return b.prices.Fetch(ctx, ticker, b.cfg.LookbackDays)
	})
	if err != nil {
		return contracts.ScoreResult{}, fmt.Errorf("prices: %w", err)
	}
	series := pricesVal.(contracts.PriceSeries)

	newsKey := fmt.Sprintf("news:%s:%d:%d", ticker, b.cfg.NewsWindowHours, b.cfg.NewsLimit)
	newsVal, err := b.cache.GetOrFetch(ctx, newsKey, b.cfg.NewsTTL, func(ctx context.Context) (interface{}, error) {
		return b.news.Fetch(ctx, ticker, b.cfg.NewsWindowHours, b.cfg.NewsLimit)
	})
	if err != nil {
		return contracts.ScoreResult{}, fmt.Errorf("news: %w", err)
	}
	items, _ := newsVal.([]contracts.NewsItem)

	return b.engine.Score(ticker, date, now, series, items)
}
