package engine

import (
	"math"
	"sort"

	"bazaar-flipper/internal/bazaar"
)

// DeriveOptions control flip derivation.
type DeriveOptions struct {
	TaxRatePercent float64 // sale-side tax in [0,100]
	TopOrders      int     // reference price = mean of top N book entries; 0 = 1
	MaxResults     int     // 0 = DefaultMaxResults
}

// Derive converts raw order-book quotes into the ranked flip list.
// Quotes with an empty or non-positive reference price on either side are
// skipped, as are items below the liquidity floor or without positive margin.
// Pure function: identical input yields identical output.
func Derive(quotes []bazaar.RawQuote, opts DeriveOptions) []FlipRecord {
	tax := ClampTax(opts.TaxRatePercent)
	topN := opts.TopOrders
	if topN < 1 {
		topN = 1
	}
	limit := opts.MaxResults
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	results := make([]FlipRecord, 0, len(quotes))
	for _, q := range quotes {
		high := referencePrice(q.BuyOrders, topN)
		low := referencePrice(q.SellOrders, topN)
		if high <= 0 || low <= 0 {
			continue
		}

		// The only point where a missing volume collapses to zero.
		instabuy := hourlyRate(q.WeeklyBuyVolume)
		instasell := hourlyRate(q.WeeklySellVolume)
		bound := math.Min(instabuy, instasell)

		margin := Margin(high, low, tax)
		if margin <= 0 || bound <= MinFlipsPerHour {
			continue
		}

		title := q.DisplayName
		if title == "" {
			title = q.ProductID
		}
		results = append(results, FlipRecord{
			ID:            q.ProductID,
			Title:         title,
			BuyPrice:      high,
			SellPrice:     low,
			InstabuyRate:  &instabuy,
			InstasellRate: &instasell,
			Margin:        sanitizeFloat(margin),
			CoinsPerHour:  sanitizeFloat(margin * bound),
			Href:          q.Href,
			Img:           q.Img,
			Raw:           q.RawText,
		})
	}

	// Rank by coins/hour; tie-break on id so identical snapshots derive
	// byte-identical output.
	sort.Slice(results, func(i, j int) bool {
		if results[i].CoinsPerHour != results[j].CoinsPerHour {
			return results[i].CoinsPerHour > results[j].CoinsPerHour
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Margin is the tax-adjusted profit per unit: tax is charged on the sale leg
// (the high-price side) only, never on the purchase leg.
func Margin(highPrice, lowPrice, taxPercent float64) float64 {
	return highPrice*(1-taxPercent/100) - lowPrice
}

// ClampTax bounds a tax rate to the supported [0,100] percent range.
func ClampTax(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// referencePrice is the mean of the top N prices in a book, best first.
// An empty book yields 0.
func referencePrice(orders []bazaar.Order, topN int) float64 {
	if len(orders) == 0 {
		return 0
	}
	if topN > len(orders) {
		topN = len(orders)
	}
	sum := 0.0
	for _, o := range orders[:topN] {
		sum += o.PricePerUnit
	}
	return sum / float64(topN)
}

// hourlyRate estimates executions per hour from a weekly volume counter.
func hourlyRate(weekly *float64) float64 {
	if weekly == nil {
		return 0
	}
	return math.Round(*weekly / HoursPerWeek)
}

// sanitizeFloat replaces NaN/Inf with 0 so records never carry non-finite
// metrics into JSON.
func sanitizeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
