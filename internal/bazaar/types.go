package bazaar

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable marks the SourceUnavailable error class: the upstream fetch
// failed, timed out, or reported an explicit failure flag. Callers test for it
// with errors.Is.
var ErrUnavailable = errors.New("bazaar: source unavailable")

// Order is a standing offer on one side of an item's order book.
// Books arrive best price first.
type Order struct {
	PricePerUnit float64 `json:"pricePerUnit"`
	Amount       int64   `json:"amount,omitempty"`
	Orders       int     `json:"orders,omitempty"`
}

// RawQuote is one item's order-book summary as received from a quote source.
// Weekly volumes are nil when the upstream reported nothing for that side:
// missing is distinct from zero until derivation explicitly substitutes.
type RawQuote struct {
	ProductID        string
	DisplayName      string
	BuyOrders        []Order // price a seller currently receives, best first
	SellOrders       []Order // price a buyer currently pays, best first
	WeeklyBuyVolume  *float64
	WeeklySellVolume *float64
	Href             string
	Img              string
	RawText          string // opaque blob used only for keyword-blacklist matching
}

// QuoteSource abstracts the two acquisition strategies (structured API
// snapshot vs. rendered-page scrape) behind one capability so the derivation
// engine stays agnostic of origin.
type QuoteSource interface {
	FetchSnapshot(ctx context.Context) ([]RawQuote, error)
	Mode() string
}

// displayName turns an upstream product id like "ENCHANTED_RUNE" into a
// human-readable title ("Enchanted Rune").
func displayName(productID string) string {
	words := strings.Split(strings.ToLower(productID), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
