package news

import (
	"github.com/rpillai/nsewatch/internal/sentiment"
	"github.com/rpillai/nsewatch/pkg/config"
	"github.com/rpillai/nsewatch/pkg/httputil"
	"github.com/rpillai/nsewatch/pkg/logger"
)

// Client fetches recent headlines per ticker and scores their polarity.
// Headlines are best-effort: a missing API key or upstream failure
// degrades to an empty list, never to a failed scoring pass.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	scorer     sentiment.Scorer

	apiKey  string
	baseURL string

	scrapeFallback bool
	scrapeBaseURL  string
}

// NewClient creates the news client. scorer must not be nil.
func NewClient(httpClient *httputil.Client, cfg *config.Config, scorer sentiment.Scorer, log *logger.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		logger:         log,
		scorer:         scorer,
		apiKey:         cfg.News.APIKey,
		baseURL:        cfg.News.BaseURL,
		scrapeFallback: cfg.News.ScrapeFallback,
		scrapeBaseURL:  cfg.News.ScrapeBaseURL,
	}
}
