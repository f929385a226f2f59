package commands

import (
	"context"
	"fmt"

	"github.com/rpillai/nsewatch/internal/cache"
	"github.com/rpillai/nsewatch/internal/ingest"
	"github.com/rpillai/nsewatch/internal/marketdata"
	"github.com/rpillai/nsewatch/internal/news"
	"github.com/rpillai/nsewatch/internal/scoring"
	"github.com/rpillai/nsewatch/internal/sentiment"
	"github.com/rpillai/nsewatch/internal/store"
	"github.com/rpillai/nsewatch/internal/universe"
	"github.com/rpillai/nsewatch/pkg/config"
	"github.com/rpillai/nsewatch/pkg/database"
	"github.com/rpillai/nsewatch/pkg/httputil"
	"github.com/rpillai/nsewatch/pkg/logger"
	"github.com/rpillai/nsewatch/pkg/redis"
)

// deps is the wired object graph shared by the commands.
type deps struct {
	cfg      *config.Config
	logger   *logger.Logger
	store    store.Store
	universe *universe.Universe
	cache    *cache.Cache
	engine   *scoring.Engine
	market   *marketdata.Client
	news     *news.Client
	redis    *redis.Client
	limiter  *redis.RateLimiter

	closers []func()
}

// buildDeps loads config and wires every component the commands need.
// Callers must defer d.close().
func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	d := &deps{cfg: cfg, logger: log}

	d.universe = universe.New(cfg.Universe.Tickers)

	// Store backend
	switch cfg.StoreBackend {
	case "postgres":
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		pg := store.NewPostgresStore(db.Pool, log)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		d.store = pg
		d.closers = append(d.closers, db.Close)
		log.Info("Connected to database")
	default:
		d.store = store.NewMemoryStore()
		log.Info("Using in-memory store")
	}

	// Optional Redis for shared rate limiting
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, using local rate limits only")
	} else {
		d.redis = rdb
		d.closers = append(d.closers, func() { _ = rdb.Close() })
		if rdb.Enabled() {
			d.limiter = redis.NewRateLimiter(rdb, "nsewatch")
		}
	}

	// External clients
	marketHTTP := httputil.NewWithTimeout(cfg, log, cfg.Market.Timeout).
		WithLocalRateLimit(cfg.Market.RateLimit)
	d.market = marketdata.NewClient(marketHTTP, cfg, log)

	scorer, err := sentiment.NewScorer(cfg.SentimentStrategy)
	if err != nil {
		return nil, err
	}
	newsHTTP := httputil.NewWithTimeout(cfg, log, cfg.News.Timeout)
	d.news = news.NewClient(newsHTTP, cfg, scorer, log)

	d.cache = cache.New(nil)
	d.engine = scoring.NewEngine(scoring.Config{
		NewsWindowHours: cfg.Scoring.NewsWindowHours,
	})

	return d, nil
}

// collector builds the ingestion pipeline on top of the wired deps.
func (d *deps) collector() *ingest.Collector {
	return ingest.NewCollector(
		d.market,
		d.news,
		d.engine,
		d.store,
		d.universe,
		d.limiter,
		ingest.Config{
			LookbackDays:    d.cfg.Scoring.LookbackDays,
			NewsWindowHours: d.cfg.Scoring.NewsWindowHours,
		},
		d.logger,
	)
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	if d.store != nil {
		d.store.Close()
	}
}
