package store

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rpillai/nsewatch/internal/contracts"
)

// Store persists ingested prices, scored headlines, and computed
// watch scores. Two backends exist: postgres for deployments and an
// in-memory store for tests and keyless local runs.
type Store interface {
	// PutPrices upserts the series for ticker. Re-ingesting a date
	// overwrites its close and volume.
	PutPrices(ctx context.Context, ticker string, series contracts.PriceSeries) error

	// GetPrices returns the last n points for ticker, oldest first.
	GetPrices(ctx context.Context, ticker string, lastN int) (contracts.PriceSeries, error)

	// PutNews inserts headlines for ticker, skipping duplicates
	// (same ticker, URL, and title).
	PutNews(ctx context.Context, ticker string, items []contracts.NewsItem) error

	// GetNews returns the most recent headlines for ticker, newest
	// first with undated items last.
	GetNews(ctx context.Context, ticker string, limit int) ([]contracts.NewsItem, error)

	// GetRecentNews returns headlines published at or after since,
	// newest first. Undated items are excluded.
	GetRecentNews(ctx context.Context, ticker string, since time.Time, limit int) ([]contracts.NewsItem, error)

	// PutScore upserts the score row keyed by (ticker, date).
	PutScore(ctx context.Context, result contracts.ScoreResult) error

	// GetScoresByDate returns scores for the date ordered by final
	// score descending.
	GetScoresByDate(ctx context.Context, date time.Time, limit int) ([]contracts.ScoreResult, error)

	Close()
}

// RecentNewsProbe caps how many recent rows feed the bucket picker.
const RecentNewsProbe = 50

// TopNewsByBucket picks up to limitTotal headlines from items,
// strongest absolute sentiment first within each bucket, filling
// positive, then negative, then neutral. The skew is deliberate:
// polarized headlines explain a score better than neutral ones.
func TopNewsByBucket(items []contracts.NewsItem, limitTotal int) *contracts.BucketedNews {
	var pos, neu, neg []contracts.NewsItem
	for _, item := range items {
		switch contracts.ClassifySentiment(item.Sentiment) {
		case contracts.BucketPositive:
			pos = append(pos, item)
		case contracts.BucketNegative:
			neg = append(neg, item)
		default:
			neu = append(neu, item)
		}
	}

	byStrength := func(group []contracts.NewsItem) {
		sort.SliceStable(group, func(i, j int) bool {
			return math.Abs(group[i].Sentiment) > math.Abs(group[j].Sentiment)
		})
	}
	byStrength(pos)
	byStrength(neu)
	byStrength(neg)

	picked := make([]contracts.NewsItem, 0, limitTotal)
	for _, group := range [][]contracts.NewsItem{pos, neg, neu} {
		for _, item := range group {
			if len(picked) >= limitTotal {
				break
			}
			picked = append(picked, item)
		}
		if len(picked) >= limitTotal {
			break
		}
	}

	out := &contracts.BucketedNews{
		Positive: []contracts.NewsItem{},
		Neutral:  []contracts.NewsItem{},
		Negative: []contracts.NewsItem{},
	}
	for _, item := range picked {
		switch contracts.ClassifySentiment(item.Sentiment) {
		case contracts.BucketPositive:
			out.Positive = append(out.Positive, item)
		case contracts.BucketNegative:
			out.Negative = append(out.Negative, item)
		default:
			out.Neutral = append(out.Neutral, item)
		}
	}
	return out
}

// DateKey normalizes a time to its UTC calendar date. All score rows
// are keyed this way so a score written at 15:30 IST and queried at
// 09:00 UTC land on the same key.
func DateKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
