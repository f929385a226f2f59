package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpillai/nsewatch/internal/contracts"
	"github.com/rpillai/nsewatch/pkg/logger"
)

// PostgresStore is the durable backend.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewPostgresStore wraps an existing pool. Call EnsureSchema before
// first use.
func NewPostgresStore(pool *pgxpool.Pool, log *logger.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: log}
}

// EnsureSchema creates the tables and indexes if missing. Idempotent,
// safe to run on every startup.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS daily_prices (
			ticker TEXT NOT NULL,
			date DATE NOT NULL,
			close DOUBLE PRECISION NOT NULL,
			volume BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (ticker, date)
		)`,
		`CREATE TABLE IF NOT EXISTS news_articles (
			id BIGSERIAL PRIMARY KEY,
			ticker TEXT NOT NULL,
			published_at TIMESTAMPTZ,
			source TEXT,
			title TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			sentiment DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (ticker, url, title)
		)`,
		`CREATE INDEX IF NOT EXISTS ix_news_ticker_published
			ON news_articles (ticker, published_at DESC)`,
		`CREATE TABLE IF NOT EXISTS daily_scores (
			ticker TEXT NOT NULL,
			date DATE NOT NULL,
			news_impact DOUBLE PRECISION NOT NULL DEFAULT 0,
			momentum DOUBLE PRECISION NOT NULL DEFAULT 0,
			risk DOUBLE PRECISION NOT NULL DEFAULT 0,
			final_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			label TEXT NOT NULL DEFAULT '',
			reason TEXT,
			PRIMARY KEY (ticker, date)
		)`,
		`CREATE INDEX IF NOT EXISTS ix_score_date_final
			ON daily_scores (date, final_score DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	s.logger.Debug("Schema ensured")
	return nil
}

func (s *PostgresStore) PutPrices(ctx context.Context, ticker string, series contracts.PriceSeries) error {
	query := `
		INSERT INTO daily_prices (ticker, date, close, volume)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker, date) DO UPDATE SET
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`

	for _, p := range series {
		if _, err := s.pool.Exec(ctx, query, ticker, p.Date, p.Close, p.Volume); err != nil {
			return fmt.Errorf("put prices %s: %w", ticker, err)
		}
	}
	return nil
}

func (s *PostgresStore) GetPrices(ctx context.Context, ticker string, lastN int) (contracts.PriceSeries, error) {
	query := `
		SELECT date, close, volume FROM (
			SELECT date, close, volume
			FROM daily_prices
			WHERE ticker = $1
			ORDER BY date DESC
			LIMIT $2
		) latest
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, lastN)
	if err != nil {
		return nil, fmt.Errorf("get prices %s: %w", ticker, err)
	}
	defer rows.Close()

	var series contracts.PriceSeries
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Close, &p.Volume); err != nil {
			return nil, err
		}
		p.Date = DateKey(p.Date)
		series = append(series, p)
	}
	return series, rows.Err()
}

func (s *PostgresStore) PutNews(ctx context.Context, ticker string, items []contracts.NewsItem) error {
	query := `
		INSERT INTO news_articles (ticker, published_at, source, title, url, sentiment)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ticker, url, title) DO NOTHING
	`

	for _, item := range items {
		if _, err := s.pool.Exec(ctx, query,
			ticker, item.PublishedAt, item.Source, item.Title, item.URL, item.Sentiment,
		); err != nil {
			return fmt.Errorf("put news %s: %w", ticker, err)
		}
	}
	return nil
}

func (s *PostgresStore) GetNews(ctx context.Context, ticker string, limit int) ([]contracts.NewsItem, error) {
	query := `
		SELECT published_at, source, title, url, sentiment
		FROM news_articles
		WHERE ticker = $1
		ORDER BY published_at DESC NULLS LAST, created_at DESC
		LIMIT $2
	`
	return s.queryNews(ctx, query, ticker, limit)
}

func (s *PostgresStore) GetRecentNews(ctx context.Context, ticker string, since time.Time, limit int) ([]contracts.NewsItem, error) {
	query := `
		SELECT published_at, source, title, url, sentiment
		FROM news_articles
		WHERE ticker = $1
			AND published_at IS NOT NULL
			AND published_at >= $2
		ORDER BY published_at DESC
		LIMIT $3
	`
	return s.queryNews(ctx, query, ticker, since, limit)
}

func (s *PostgresStore) queryNews(ctx context.Context, query string, args ...interface{}) ([]contracts.NewsItem, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	var items []contracts.NewsItem
	for rows.Next() {
		var item contracts.NewsItem
		var source, url *string
		if err := rows.Scan(&item.PublishedAt, &source, &item.Title, &url, &item.Sentiment); err != nil {
			return nil, err
		}
		if source != nil {
			item.Source = *source
		}
		if url != nil {
			item.URL = *url
		}
		items = append(items, item.WithBucket())
	}
	return items, rows.Err()
}

func (s *PostgresStore) PutScore(ctx context.Context, result contracts.ScoreResult) error {
	query := `
		INSERT INTO daily_scores (ticker, date, news_impact, momentum, risk, final_score, label, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker, date) DO UPDATE SET
			news_impact = EXCLUDED.news_impact,
			momentum = EXCLUDED.momentum,
			risk = EXCLUDED.risk,
			final_score = EXCLUDED.final_score,
			label = EXCLUDED.label,
			reason = EXCLUDED.reason
	`

	_, err := s.pool.Exec(ctx, query,
		result.Ticker, DateKey(result.Date),
		result.NewsImpact, result.Momentum, result.Risk, result.FinalScore,
		result.Label, result.Reason,
	)
	if err != nil {
		return fmt.Errorf("put score %s: %w", result.Ticker, err)
	}
	return nil
}

func (s *PostgresStore) GetScoresByDate(ctx context.Context, date time.Time, limit int) ([]contracts.ScoreResult, error) {
	query := `
		SELECT ticker, date, news_impact, momentum, risk, final_score, label, reason
		FROM daily_scores
		WHERE date = $1
		ORDER BY final_score DESC, ticker ASC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, DateKey(date), limit)
	if err != nil {
		return nil, fmt.Errorf("get scores: %w", err)
	}
	defer rows.Close()

	var results []contracts.ScoreResult
	for rows.Next() {
		var r contracts.ScoreResult
		var reason *string
		if err := rows.Scan(
			&r.Ticker, &r.Date, &r.NewsImpact, &r.Momentum, &r.Risk,
			&r.FinalScore, &r.Label, &reason,
		); err != nil {
			return nil, err
		}
		if reason != nil {
			r.Reason = *reason
		}
		r.Date = DateKey(r.Date)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
