package contracts

import "time"

// Sentiment bucket thresholds. Inclusive on both sides: a sentiment of
// exactly 0.10 is positive, exactly -0.10 is negative.
const (
	PositiveThreshold = 0.10
	NegativeThreshold = -0.10
)

// Bucket names for discretized sentiment.
const (
	BucketPositive = "positive"
	BucketNeutral  = "neutral"
	BucketNegative = "negative"
)

// ClassifySentiment maps a continuous sentiment score to a bucket.
// The bucket is always derived from the sentiment, never stored
// independently, so the two cannot diverge.
func ClassifySentiment(sentiment float64) string {
	if sentiment >= PositiveThreshold {
		return BucketPositive
	}
	if sentiment <= NegativeThreshold {
		return BucketNegative
	}
	return BucketNeutral
}

// NewsItem is one headline for a ticker with its computed sentiment.
type NewsItem struct {
	PublishedAt *time.Time `json:"published_at"`
	Source      string     `json:"source,omitempty"`
	Title       string     `json:"title"`
	URL         string     `json:"url,omitempty"`
	Sentiment   float64    `json:"sentiment"`
	Bucket      string     `json:"bucket"`
}

// WithBucket returns the item with its bucket recomputed from the
// sentiment. Use this after any mutation of Sentiment.
func (n NewsItem) WithBucket() NewsItem {
	n.Bucket = ClassifySentiment(n.Sentiment)
	return n
}

// BucketedNews groups headlines by sentiment bucket for API responses.
type BucketedNews struct {
	Positive []NewsItem `json:"positive"`
	Neutral  []NewsItem `json:"neutral"`
	Negative []NewsItem `json:"negative"`
}
