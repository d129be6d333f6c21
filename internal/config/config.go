package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Source modes for quote acquisition. The two are alternative deployments,
// not concurrent peers.
const (
	SourceAPI    = "api"
	SourceScrape = "scrape"
)

// Config holds application settings (in-memory representation).
// Client preference persistence is handled by internal/db.
type Config struct {
	Port       int    `json:"port"`
	SourceMode string `json:"source_mode"` // "api" or "scrape"

	BazaarURL string `json:"bazaar_url"` // live snapshot endpoint
	ScrapeURL string `json:"scrape_url"` // legacy rendered listing page

	RedisURL string `json:"redis_url"` // empty = in-memory result cache

	TaxRatePercent float64 `json:"tax_rate_percent"` // default sale-side tax
	TopOrders      int     `json:"top_orders"`       // reference price = mean of top N
	MaxResults     int     `json:"max_results"`

	APICacheTTL     time.Duration `json:"api_cache_ttl"`
	ScrapeCacheTTL  time.Duration `json:"scrape_cache_ttl"`
	RefreshInterval time.Duration `json:"refresh_interval"`
	FetchTimeout    time.Duration `json:"fetch_timeout"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Port:            13380,
		SourceMode:      SourceAPI,
		BazaarURL:       "https://api.hypixel.net/v2/skyblock/bazaar",
		ScrapeURL:       "https://www.skyblock.bz/all",
		TaxRatePercent:  1.125,
		TopOrders:       1,
		MaxResults:      100,
		APICacheTTL:     10 * time.Second,
		ScrapeCacheTTL:  30 * time.Second,
		RefreshInterval: 10 * time.Second,
		FetchTimeout:    15 * time.Second,
	}
}

// Load builds a Config from the environment, falling back to defaults.
// A .env file in the working directory is honored if present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Port = envInt("BZ_PORT", cfg.Port)
	cfg.SourceMode = envStr("BZ_SOURCE", cfg.SourceMode)
	cfg.BazaarURL = envStr("BZ_API_URL", cfg.BazaarURL)
	cfg.ScrapeURL = envStr("BZ_SCRAPE_URL", cfg.ScrapeURL)
	cfg.RedisURL = envStr("REDIS_URL", cfg.RedisURL)
	cfg.TaxRatePercent = envFloat("BZ_TAX_PERCENT", cfg.TaxRatePercent)
	cfg.TopOrders = envInt("BZ_TOP_ORDERS", cfg.TopOrders)
	cfg.MaxResults = envInt("BZ_MAX_RESULTS", cfg.MaxResults)
	cfg.APICacheTTL = envDuration("BZ_API_CACHE_TTL", cfg.APICacheTTL)
	cfg.ScrapeCacheTTL = envDuration("BZ_SCRAPE_CACHE_TTL", cfg.ScrapeCacheTTL)
	cfg.RefreshInterval = envDuration("BZ_REFRESH_INTERVAL", cfg.RefreshInterval)
	cfg.FetchTimeout = envDuration("BZ_FETCH_TIMEOUT", cfg.FetchTimeout)

	if cfg.SourceMode != SourceAPI && cfg.SourceMode != SourceScrape {
		cfg.SourceMode = SourceAPI
	}
	if cfg.TopOrders < 1 {
		cfg.TopOrders = 1
	}
	return cfg
}

// CacheTTL returns the result-cache expiry for the active source mode.
func (c *Config) CacheTTL() time.Duration {
	if c.SourceMode == SourceScrape {
		return c.ScrapeCacheTTL
	}
	return c.APICacheTTL
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
