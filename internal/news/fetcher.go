package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rpillai/nsewatch/internal/contracts"
	"github.com/rpillai/nsewatch/internal/universe"
)

// maxTitleRunes caps stored headline length.
const maxTitleRunes = 500

// everythingResponse mirrors the NewsAPI /v2/everything payload.
type everythingResponse struct {
	Status       string `json:"status"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Fetch returns scored headlines for ticker published within the last
// windowHours, newest first, at most limit items. It never returns an
// error for upstream trouble: no API key, a non-200 status, or a
// malformed payload all degrade to an empty list (with a log line), so
// a news outage cannot take down a scoring pass. Only context
// cancellation propagates as an error.
func (c *Client) Fetch(ctx context.Context, ticker string, windowHours, limit int) ([]contracts.NewsItem, error) {
	if c.apiKey == "" {
		if c.scrapeFallback && c.scrapeBaseURL != "" {
			return c.scrape(ctx, ticker, limit)
		}
		return nil, nil
	}

	since := time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)

	params := url.Values{}
	params.Set("q", universe.QueryName(ticker))
	params.Set("from", since.Format(time.RFC3339))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprintf("%d", limit))

	fullURL := fmt.Sprintf("%s/v2/everything?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"X-Api-Key": c.apiKey,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WithError(err).WithField("ticker", ticker).Warn("News fetch failed, continuing without headlines")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"status": resp.StatusCode,
		}).Warn("News API returned non-200, continuing without headlines")
		return nil, nil
	}

	var payload everythingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("News payload decode failed, continuing without headlines")
		return nil, nil
	}

	items := make([]contracts.NewsItem, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		title := truncateTitle(strings.TrimSpace(a.Title))
		if title == "" {
			continue
		}

		item := contracts.NewsItem{
			Source:    a.Source.Name,
			Title:     title,
			URL:       a.URL,
			Sentiment: c.scorer.Score(title),
		}
		if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			ts = ts.UTC()
			item.PublishedAt = &ts
		}

		items = append(items, item.WithBucket())
		if len(items) >= limit {
			break
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(items),
	}).Debug("Fetched headlines")

	return items, nil
}

// truncateTitle trims a headline to maxTitleRunes runes.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleRunes {
		return title
	}
	return string(runes[:maxTitleRunes])
}
