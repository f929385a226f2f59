package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpillai/nsewatch/internal/contracts"
	"github.com/rpillai/nsewatch/internal/sentiment"
	"github.com/rpillai/nsewatch/pkg/config"
	"github.com/rpillai/nsewatch/pkg/httputil"
	"github.com/rpillai/nsewatch/pkg/logger"
)

func newTestNewsClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.News.APIKey = apiKey
	cfg.News.BaseURL = server.URL

	log := logger.NewNop()
	httpClient := httputil.New(cfg, log).DisableRetry()

	return NewClient(httpClient, cfg, sentiment.NewKeywordScorer(), log)
}

func TestFetchScoresAndBucketsHeadlines(t *testing.T) {
	payload := `{
		"status": "ok",
		"totalResults": 3,
		"articles": [
			{"source": {"name": "Mint"}, "title": "Infosys posts record profit growth", "url": "https://example.com/1", "publishedAt": "2025-08-20T09:30:00Z"},
			{"source": {"name": "ET"}, "title": "Shares fall after fraud probe", "url": "https://example.com/2", "publishedAt": "2025-08-20T11:00:00Z"},
			{"source": {"name": "BS"}, "title": "Quarterly results announced on Friday", "url": "https://example.com/3", "publishedAt": "2025-08-20T12:00:00Z"}
		]
	}`

	client := newTestNewsClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/everything", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "Infosys", r.URL.Query().Get("q"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.Equal(t, "publishedAt", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "20", r.URL.Query().Get("pageSize"))
		fmt.Fprint(w, payload)
	})

	items, err := client.Fetch(context.Background(), "INFY.NS", 48, 20)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, contracts.BucketPositive, items[0].Bucket)
	assert.Greater(t, items[0].Sentiment, 0.0)
	assert.Equal(t, "Mint", items[0].Source)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, 9, items[0].PublishedAt.Hour())

	assert.Equal(t, contracts.BucketNegative, items[1].Bucket)
	assert.Less(t, items[1].Sentiment, 0.0)

	assert.Equal(t, contracts.BucketNeutral, items[2].Bucket)
	assert.Equal(t, 0.0, items[2].Sentiment)
}

func TestFetchSkipsEmptyAndTruncatesTitles(t *testing.T) {
	long := strings.Repeat("x", 600)
	payload := fmt.Sprintf(`{
		"status": "ok",
		"articles": [
			{"source": {"name": "A"}, "title": "   ", "publishedAt": "2025-08-20T09:00:00Z"},
			{"source": {"name": "B"}, "title": "%s", "publishedAt": "2025-08-20T10:00:00Z"},
			{"source": {"name": "C"}, "title": "Dividend announced", "publishedAt": "not-a-timestamp"}
		]
	}`, long)

	client := newTestNewsClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	})

	items, err := client.Fetch(context.Background(), "TCS.NS", 48, 20)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Len(t, []rune(items[0].Title), 500)
	// Unparseable timestamps leave PublishedAt nil rather than dropping the item
	assert.Equal(t, "Dividend announced", items[1].Title)
	assert.Nil(t, items[1].PublishedAt)
}

func TestFetchRespectsLimit(t *testing.T) {
	var articles []string
	for i := 0; i < 15; i++ {
		articles = append(articles, fmt.Sprintf(
			`{"source": {"name": "S"}, "title": "Headline %d", "publishedAt": "2025-08-20T09:00:00Z"}`, i))
	}
	payload := fmt.Sprintf(`{"status": "ok", "articles": [%s]}`, strings.Join(articles, ","))

	client := newTestNewsClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	})

	items, err := client.Fetch(context.Background(), "TCS.NS", 48, 5)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestFetchWithoutAPIKeyReturnsEmpty(t *testing.T) {
	called := false
	client := newTestNewsClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	items, err := client.Fetch(context.Background(), "TCS.NS", 48, 20)
	require.NoError(t, err)
	assert.Nil(t, items)
	assert.False(t, called)
}

func TestFetchSoftDegradesOnUpstreamFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "garbage payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<html>not json</html>")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestNewsClient(t, "k", tt.handler)
			items, err := client.Fetch(context.Background(), "TCS.NS", 48, 20)
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestScrapeFallback(t *testing.T) {
	html := `<html><body>
		<article><a href="./articles/abc">Reliance shares surge on record profit</a></article>
		<article><a href="https://example.com/2">Refinery margins weak, outlook cut</a></article>
		<article><a href="./articles/abc">Reliance shares surge on record profit</a></article>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("q"), "Reliance Industries")
		fmt.Fprint(w, html)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.News.ScrapeFallback = true
	cfg.News.ScrapeBaseURL = server.URL

	log := logger.NewNop()
	httpClient := httputil.New(cfg, log).DisableRetry()
	client := NewClient(httpClient, cfg, sentiment.NewKeywordScorer(), log)

	items, err := client.Fetch(context.Background(), "RELIANCE.NS", 48, 20)
	require.NoError(t, err)
	require.Len(t, items, 2) // duplicate headline collapsed

	assert.Equal(t, contracts.BucketPositive, items[0].Bucket)
	assert.Equal(t, server.URL+"/articles/abc", items[0].URL)
	assert.Nil(t, items[0].PublishedAt)
	assert.Equal(t, contracts.BucketNegative, items[1].Bucket)
}
