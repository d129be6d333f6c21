package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"bazaar-flipper/internal/api"
	"bazaar-flipper/internal/bazaar"
	"bazaar-flipper/internal/cache"
	"bazaar-flipper/internal/config"
	"bazaar-flipper/internal/db"
	"bazaar-flipper/internal/engine"
	"bazaar-flipper/internal/logger"
)

var version = "dev"

func main() {
	port := flag.Int("port", 0, "HTTP server port (overrides BZ_PORT)")
	flag.Parse()

	logger.Banner(version)

	cfg := config.Load()
	if *port != 0 {
		cfg.Port = *port
	}

	// Open SQLite database (preferences + refresh history)
	database, err := db.Open()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	source := buildSource(cfg)
	logger.Info("Source", fmt.Sprintf("Mode: %s", source.Mode()))

	results := buildCache(cfg)

	svc := engine.NewService(source, results, cfg.CacheTTL(), engine.DeriveOptions{
		TaxRatePercent: cfg.TaxRatePercent,
		TopOrders:      cfg.TopOrders,
		MaxResults:     cfg.MaxResults,
	})
	svc.SetRecorder(database)

	srv := api.NewServer(cfg, svc, database, version)

	// Keep the default-tax window warm so interactive requests hit cache.
	go refreshLoop(svc, cfg)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}

func buildSource(cfg *config.Config) bazaar.QuoteSource {
	if cfg.SourceMode == config.SourceScrape {
		return bazaar.NewScrapeSource(cfg.ScrapeURL, cfg.FetchTimeout)
	}
	return bazaar.NewAPISource(bazaar.NewClient(cfg.FetchTimeout), cfg.BazaarURL)
}

func buildCache(cfg *config.Config) engine.ResultCache {
	if cfg.RedisURL != "" {
		r, err := cache.NewRedis(cfg.RedisURL)
		if err == nil {
			logger.Success("Cache", "Redis connected")
			return r
		}
		logger.Warn("Cache", fmt.Sprintf("Redis unavailable, using in-memory: %v", err))
	}
	return cache.NewMemory()
}

func refreshLoop(svc *engine.Service, cfg *config.Config) {
	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
		if _, err := svc.Flips(ctx, cfg.TaxRatePercent); err != nil {
			logger.Warn("Refresh", fmt.Sprintf("Snapshot refresh failed: %v", err))
		}
		cancel()
	}
}
