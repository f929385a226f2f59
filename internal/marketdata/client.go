package marketdata

import (
	"github.com/rpillai/nsewatch/pkg/config"
	"github.com/rpillai/nsewatch/pkg/httputil"
	"github.com/rpillai/nsewatch/pkg/logger"
)

// Client fetches end-of-day bars from the Yahoo chart API.
// All price provider calls go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string

	// Minimum usable points before a fetch is considered sufficient.
	minPoints int
}

// NewClient creates a new price provider client. The HTTP client should
// carry the provider timeout and rate limit from config.
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.Market.BaseURL,
		minPoints:  25,
	}
}

// WithMinPoints overrides the minimum usable point count. The default
// of 25 covers the score engine's 20-day return plus buffer; thin
// probes (e.g. symbol validation) can lower it to 10.
func (c *Client) WithMinPoints(n int) *Client {
	c.minPoints = n
	return c
}
