package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Storage backend: "postgres" (persisted scores/prices) or "memory"
	StoreBackend string

	// Database
	Database DatabaseConfig

	// Redis (optional, shared rate limiting for bulk ingestion)
	Redis RedisConfig

	// External APIs
	Market MarketConfig
	News   NewsConfig

	// Universe
	Universe UniverseConfig

	// Scoring
	Scoring ScoringConfig

	// Temporal cache
	Cache CacheConfig

	// Refresh endpoint shared secret. Empty disables the token check.
	RefreshToken string

	// Sentiment strategy: "lexicon" or "keyword"
	SentimentStrategy string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// MarketConfig holds the EOD price provider configuration
type MarketConfig struct {
	BaseURL string
	Timeout time.Duration
	// Requests per second against the chart API
	RateLimit int
}

// NewsConfig holds the news provider configuration.
// An empty APIKey disables news ingestion (the pipeline degrades to no news).
type NewsConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// HTML headline scraping fallback when no API key is configured
	ScrapeFallback bool
	ScrapeBaseURL  string
}

// UniverseConfig holds the ticker universe
type UniverseConfig struct {
	// Exchange-suffixed symbols, e.g. "TCS.NS", in scoring order
	Tickers []string
}

// ScoringConfig holds score engine parameters
type ScoringConfig struct {
	// News window used by the score engine, in hours
	NewsWindowHours int
	// Price lookback requested per ticker, in trading days
	LookbackDays int
}

// CacheConfig holds temporal cache TTLs
type CacheConfig struct {
	PriceTTL time.Duration
	NewsTTL  time.Duration
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		StoreBackend: getEnv("STORE_BACKEND", "memory"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Market: MarketConfig{
			BaseURL:   getEnv("MARKET_BASE_URL", "https://query1.finance.yahoo.com"),
			Timeout:   getEnvAsDuration("MARKET_TIMEOUT", "25s"),
			RateLimit: getEnvAsInt("MARKET_RATE_LIMIT", 5),
		},

		News: NewsConfig{
			APIKey:         getEnv("NEWSAPI_KEY", ""),
			BaseURL:        getEnv("NEWSAPI_BASE_URL", "https://newsapi.org"),
			Timeout:        getEnvAsDuration("NEWS_TIMEOUT", "20s"),
			ScrapeFallback: getEnvAsBool("NEWS_SCRAPE_FALLBACK", false),
			ScrapeBaseURL:  getEnv("NEWS_SCRAPE_BASE_URL", "https://finance.yahoo.com"),
		},

		Universe: UniverseConfig{
			Tickers: getEnvAsList("UNIVERSE", defaultUniverse),
		},

		Scoring: ScoringConfig{
			NewsWindowHours: getEnvAsInt("SCORE_NEWS_WINDOW_HOURS", 48),
			LookbackDays:    getEnvAsInt("SCORE_LOOKBACK_DAYS", 120),
		},

		Cache: CacheConfig{
			PriceTTL: getEnvAsDuration("CACHE_PRICE_TTL", "6h"),
			NewsTTL:  getEnvAsDuration("CACHE_NEWS_TTL", "30m"),
		},

		RefreshToken: getEnv("REFRESH_TOKEN", ""),

		SentimentStrategy: getEnv("SENTIMENT_STRATEGY", "lexicon"),

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// defaultUniverse is a small NIFTY subset so the service works out of the box.
var defaultUniverse = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS",
	"HINDUNILVR.NS", "ITC.NS", "SBIN.NS", "BHARTIARTL.NS", "LT.NS",
	"BAJFINANCE.NS", "AXISBANK.NS", "ASIANPAINT.NS", "MARUTI.NS", "SUNPHARMA.NS",
	"TITAN.NS", "WIPRO.NS", "ULTRACEMCO.NS", "TATAMOTORS.NS", "BAJAJ-AUTO.NS",
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.StoreBackend {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: postgres, memory")
	}

	if c.SentimentStrategy != "lexicon" && c.SentimentStrategy != "keyword" {
		return fmt.Errorf("SENTIMENT_STRATEGY must be one of: lexicon, keyword")
	}

	if len(c.Universe.Tickers) == 0 {
		return fmt.Errorf("UNIVERSE must contain at least one ticker")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
