package bazaar

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"bazaar-flipper/internal/logger"
)

// APISource fetches the full order-book snapshot from the live bazaar API.
type APISource struct {
	client *Client
	url    string
}

// NewAPISource creates the live-API quote source.
func NewAPISource(client *Client, url string) *APISource {
	return &APISource{client: client, url: url}
}

// Mode identifies this source for cache TTL selection and logging.
func (s *APISource) Mode() string { return "api" }

// snapshotResponse mirrors the upstream snapshot endpoint.
type snapshotResponse struct {
	Success  bool                    `json:"success"`
	Cause    string                  `json:"cause"`
	Products map[string]productEntry `json:"products"`
}

type productEntry struct {
	ProductID   string      `json:"product_id"`
	BuySummary  []Order     `json:"buy_summary"`
	SellSummary []Order     `json:"sell_summary"`
	QuickStatus quickStatus `json:"quick_status"`
}

type quickStatus struct {
	BuyMovingWeek  *float64 `json:"buyMovingWeek"`
	SellMovingWeek *float64 `json:"sellMovingWeek"`
}

// FetchSnapshot returns one RawQuote per tradeable item.
// An explicit success=false from upstream is fatal for the fetch, as is an
// empty product set; staleness handling is the cache's job, not ours.
// Individual malformed items are skipped, never abort the whole batch.
func (s *APISource) FetchSnapshot(ctx context.Context) ([]RawQuote, error) {
	var resp snapshotResponse
	if err := s.client.GetJSON(ctx, s.url, &resp); err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	if !resp.Success {
		cause := resp.Cause
		if cause == "" {
			cause = "upstream reported failure"
		}
		return nil, fmt.Errorf("fetch snapshot: %w: %s", ErrUnavailable, cause)
	}
	if len(resp.Products) == 0 {
		return nil, fmt.Errorf("fetch snapshot: %w: empty product set", ErrUnavailable)
	}

	quotes := make([]RawQuote, 0, len(resp.Products))
	skipped := 0
	for id, p := range resp.Products {
		if p.ProductID != "" {
			id = p.ProductID
		}
		if id == "" || hasNegativePrice(p.BuySummary) || hasNegativePrice(p.SellSummary) {
			skipped++
			continue
		}
		name := displayName(id)
		quotes = append(quotes, RawQuote{
			ProductID:        id,
			DisplayName:      name,
			BuyOrders:        p.BuySummary,
			SellOrders:       p.SellSummary,
			WeeklyBuyVolume:  p.QuickStatus.BuyMovingWeek,
			WeeklySellVolume: p.QuickStatus.SellMovingWeek,
			Href:             "https://bazaartracker.com/product/" + strings.ToLower(id),
			RawText:          name + " " + id,
		})
	}
	if skipped > 0 {
		logger.Warn("Bazaar", fmt.Sprintf("Skipped %d malformed products", skipped))
	}

	// Upstream products arrive as a map; order them so derivation from an
	// identical snapshot is byte-identical.
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].ProductID < quotes[j].ProductID })
	return quotes, nil
}

func hasNegativePrice(orders []Order) bool {
	for _, o := range orders {
		if o.PricePerUnit < 0 {
			return true
		}
	}
	return false
}
