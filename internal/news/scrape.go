package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rpillai/nsewatch/internal/contracts"
	"github.com/rpillai/nsewatch/internal/universe"
)

// scrape is the keyless fallback: parse headline anchors out of a news
// search result page. Coarser than the API path (no publish timestamps,
// no source names) but keeps sentiment flowing when no API key is set.
// Same soft-degrade contract as Fetch: failures log and return empty.
func (c *Client) scrape(ctx context.Context, ticker string, limit int) ([]contracts.NewsItem, error) {
	query := url.QueryEscape(universe.QueryName(ticker) + " stock")
	fullURL := fmt.Sprintf("%s/search?q=%s&hl=en-IN&gl=IN", c.scrapeBaseURL, query)

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WithError(err).WithField("ticker", ticker).Warn("News scrape failed, continuing without headlines")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"status": resp.StatusCode,
		}).Warn("News scrape returned non-200, continuing without headlines")
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Warn("News scrape parse failed, continuing without headlines")
		return nil, nil
	}

	seen := make(map[string]bool)
	items := make([]contracts.NewsItem, 0, limit)

	doc.Find("article a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := truncateTitle(strings.TrimSpace(sel.Text()))
		if title == "" || seen[title] {
			return true
		}
		seen[title] = true

		item := contracts.NewsItem{
			Title:     title,
			Sentiment: c.scorer.Score(title),
		}
		if href, ok := sel.Attr("href"); ok {
			item.URL = resolveScrapeURL(c.scrapeBaseURL, href)
		}

		items = append(items, item.WithBucket())
		return len(items) < limit
	})

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(items),
	}).Debug("Scraped headlines")

	return items, nil
}

// resolveScrapeURL turns relative anchor hrefs into absolute URLs.
func resolveScrapeURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	href = strings.TrimPrefix(href, ".")
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}
