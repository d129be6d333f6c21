package bazaar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const snapshotFixture = `{
	"success": true,
	"products": {
		"ENCHANTED_RUNE": {
			"product_id": "ENCHANTED_RUNE",
			"buy_summary": [{"pricePerUnit": 100, "amount": 50, "orders": 3}],
			"sell_summary": [{"pricePerUnit": 90, "amount": 20, "orders": 2}],
			"quick_status": {"buyMovingWeek": 2016, "sellMovingWeek": 2016}
		},
		"DIAMOND": {
			"product_id": "DIAMOND",
			"buy_summary": [],
			"sell_summary": [{"pricePerUnit": 8}],
			"quick_status": {}
		}
	}
}`

func newTestSource(t *testing.T, handler http.HandlerFunc) (*APISource, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	src := NewAPISource(NewClient(5*time.Second), srv.URL)
	return src, srv.Close
}

func TestFetchSnapshot_ParsesProducts(t *testing.T) {
	src, done := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(snapshotFixture))
	})
	defer done()

	quotes, err := src.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes))
	}

	// Map iteration order must not leak: quotes come back sorted by id.
	if quotes[0].ProductID != "DIAMOND" || quotes[1].ProductID != "ENCHANTED_RUNE" {
		t.Fatalf("quotes not sorted by id: %s, %s", quotes[0].ProductID, quotes[1].ProductID)
	}

	got := quotes[1]
	if got.DisplayName != "Enchanted Rune" {
		t.Errorf("DisplayName = %q, want %q", got.DisplayName, "Enchanted Rune")
	}
	if len(got.BuyOrders) != 1 || got.BuyOrders[0].PricePerUnit != 100 {
		t.Errorf("BuyOrders = %+v", got.BuyOrders)
	}
	if got.WeeklyBuyVolume == nil || *got.WeeklyBuyVolume != 2016 {
		t.Errorf("WeeklyBuyVolume = %v, want 2016", got.WeeklyBuyVolume)
	}

	// quick_status absent → volumes missing, not zero.
	diamond := quotes[0]
	if diamond.WeeklyBuyVolume != nil || diamond.WeeklySellVolume != nil {
		t.Errorf("absent volumes should be nil, got %v/%v",
			diamond.WeeklyBuyVolume, diamond.WeeklySellVolume)
	}
}

func TestFetchSnapshot_UpstreamFailureFlag(t *testing.T) {
	src, done := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "cause": "throttled"}`))
	})
	defer done()

	_, err := src.FetchSnapshot(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}

func TestFetchSnapshot_ServerError(t *testing.T) {
	src, done := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	defer done()

	_, err := src.FetchSnapshot(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}

func TestFetchSnapshot_EmptyProductSetIsUnavailable(t *testing.T) {
	src, done := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "products": {}}`))
	})
	defer done()

	_, err := src.FetchSnapshot(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("empty snapshot should be ErrUnavailable, got %v", err)
	}
}

func TestFetchSnapshot_SkipsMalformedItem(t *testing.T) {
	src, done := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": true,
			"products": {
				"BAD": {"product_id": "BAD", "buy_summary": [{"pricePerUnit": -5}], "sell_summary": []},
				"GOOD": {"product_id": "GOOD", "buy_summary": [{"pricePerUnit": 10}], "sell_summary": [{"pricePerUnit": 9}]}
			}
		}`))
	})
	defer done()

	quotes, err := src.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("one bad item must not abort the batch: %v", err)
	}
	if len(quotes) != 1 || quotes[0].ProductID != "GOOD" {
		t.Fatalf("got %+v, want only GOOD", quotes)
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName("ENCHANTED_RUNE"); got != "Enchanted Rune" {
		t.Errorf("displayName = %q", got)
	}
	if got := displayName("DIAMOND"); got != "Diamond" {
		t.Errorf("displayName = %q", got)
	}
}
