package contracts

import "errors"

// Error taxonomy shared by the fetchers, the score engine and the
// watchlist builder. Wrap these with fmt.Errorf("...: %w", err) to add
// context; callers match with errors.Is.
var (
	// ErrUpstreamUnavailable covers transport failures and non-success
	// HTTP statuses from the price or news provider.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrRateLimited signals upstream throttling (HTTP 429 or an
	// equivalent message pattern). Bulk ingestion backs off on it.
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrInvalidTicker signals a malformed or unknown symbol for which
	// the upstream has no data at all.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrEmptySeries signals the upstream answered but returned no
	// usable bars.
	ErrEmptySeries = errors.New("empty price series")

	// ErrInsufficientHistory signals the usable history is below the
	// minimum the caller needs.
	ErrInsufficientHistory = errors.New("insufficient price history")
)
