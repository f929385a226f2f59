package universe

import "strings"

// Universe is the ordered list of exchange-suffixed symbols scored per
// pass. Order is deterministic: it is the scoring order.
type Universe struct {
	Tickers []string
}

// New builds a Universe from config, dropping empty entries.
func New(tickers []string) *Universe {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return &Universe{Tickers: out}
}

// Size returns the number of tickers.
func (u *Universe) Size() int {
	return len(u.Tickers)
}

// aliases maps base symbols to company names that work better as news
// search queries than the raw symbol.
var aliases = map[string]string{
	"RELIANCE":   "Reliance Industries",
	"TCS":        "Tata Consultancy Services",
	"HDFCBANK":   "HDFC Bank",
	"INFY":       "Infosys",
	"ICICIBANK":  "ICICI Bank",
	"HINDUNILVR": "Hindustan Unilever",
	"SBIN":       "State Bank of India",
	"BHARTIARTL": "Bharti Airtel",
	"LT":         "Larsen Toubro",
	"BAJFINANCE": "Bajaj Finance",
	"AXISBANK":   "Axis Bank",
	"ASIANPAINT": "Asian Paints",
	"MARUTI":     "Maruti Suzuki",
	"SUNPHARMA":  "Sun Pharma",
	"ULTRACEMCO": "UltraTech Cement",
	"TATAMOTORS": "Tata Motors",
	"BAJAJ-AUTO": "Bajaj Auto",
}

// BaseSymbol strips the exchange suffix: "TCS.NS" -> "TCS".
func BaseSymbol(ticker string) string {
	if i := strings.Index(ticker, "."); i > 0 {
		return ticker[:i]
	}
	return ticker
}

// QueryName maps a ticker symbol to a natural-language news search
// query: curated alias when available, otherwise the base symbol with
// dashes turned into spaces (BAJAJ-AUTO -> "BAJAJ AUTO").
func QueryName(ticker string) string {
	base := BaseSymbol(ticker)
	if name, ok := aliases[base]; ok {
		return name
	}
	return strings.ReplaceAll(base, "-", " ")
}
