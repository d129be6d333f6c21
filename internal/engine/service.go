package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"bazaar-flipper/internal/bazaar"
	"bazaar-flipper/internal/observability"
)

// ResultCache memoizes the derived ranked list per tax-rate key for a fixed
// window. Entries are replaced on refresh, never mutated in place, so a
// reader can never observe a partially-updated list.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]FlipRecord, bool)
	Set(ctx context.Context, key string, recs []FlipRecord, ttl time.Duration)
}

// Recorder receives one row per successful derivation.
type Recorder interface {
	RecordRefresh(source string, taxPercent float64, count int, topCPH float64, took time.Duration)
}

// Service is the cache-through flip pipeline: quote source → derivation →
// result cache. Concurrent misses for one key are coalesced; duplicated
// recomputes would also be correct since derivation is idempotent.
type Service struct {
	source   bazaar.QuoteSource
	cache    ResultCache
	ttl      time.Duration
	opts     DeriveOptions // tax overridden per call
	recorder Recorder
	group    singleflight.Group
}

// NewService wires a quote source and result cache into a flip service.
func NewService(source bazaar.QuoteSource, cache ResultCache, ttl time.Duration, opts DeriveOptions) *Service {
	return &Service{source: source, cache: cache, ttl: ttl, opts: opts}
}

// SetRecorder attaches an optional refresh-history sink.
func (s *Service) SetRecorder(r Recorder) { s.recorder = r }

// Mode reports the active quote-source mode.
func (s *Service) Mode() string { return s.source.Mode() }

// Flips returns the ranked flip list for a tax rate, serving from cache
// within the expiry window and recomputing synchronously on a miss.
// A failed upstream fetch surfaces as an error and caches nothing; serving
// stale data is the cache's job, failing loudly is this path's.
func (s *Service) Flips(ctx context.Context, taxPercent float64) ([]FlipRecord, error) {
	tax := ClampTax(taxPercent)
	key := cacheKey(tax)

	if recs, ok := s.cache.Get(ctx, key); ok {
		observability.CacheHits.Inc()
		return recs, nil
	}
	observability.CacheMisses.Inc()

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.refresh(ctx, tax, key)
	})
	if err != nil {
		return nil, err
	}
	return v.([]FlipRecord), nil
}

func (s *Service) refresh(ctx context.Context, tax float64, key string) ([]FlipRecord, error) {
	start := time.Now()

	observability.SnapshotFetches.Inc()
	quotes, err := s.source.FetchSnapshot(ctx)
	if err != nil {
		observability.SnapshotFetchErrors.Inc()
		return nil, err
	}

	opts := s.opts
	opts.TaxRatePercent = tax
	recs := Derive(quotes, opts)

	took := time.Since(start)
	observability.DeriveDuration.Observe(took.Seconds())
	observability.RecordsDerived.Set(float64(len(recs)))

	s.cache.Set(ctx, key, recs, s.ttl)

	if s.recorder != nil {
		topCPH := 0.0
		if len(recs) > 0 {
			topCPH = recs[0].CoinsPerHour
		}
		s.recorder.RecordRefresh(s.source.Mode(), tax, len(recs), topCPH, took)
	}
	return recs, nil
}

// cacheKey composes the fixed namespace with the tax rate so distinct tax
// selections get independent cache windows.
func cacheKey(taxPercent float64) string {
	return fmt.Sprintf("flips:v1:%.4f", taxPercent)
}
