package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"bazaar-flipper/internal/bazaar"
)

func fptr(v float64) *float64 { return &v }

// quote builds a one-order-per-side RawQuote.
func quote(id string, buyPrice, sellPrice float64, weeklyBuy, weeklySell *float64) bazaar.RawQuote {
	q := bazaar.RawQuote{
		ProductID:        id,
		DisplayName:      id,
		WeeklyBuyVolume:  weeklyBuy,
		WeeklySellVolume: weeklySell,
	}
	if buyPrice > 0 {
		q.BuyOrders = []bazaar.Order{{PricePerUnit: buyPrice}}
	}
	if sellPrice > 0 {
		q.SellOrders = []bazaar.Order{{PricePerUnit: sellPrice}}
	}
	return q
}

func TestDerive_WorkedExample(t *testing.T) {
	quotes := []bazaar.RawQuote{
		quote("ITEM", 100, 90, fptr(2016), fptr(2016)),
	}
	recs := Derive(quotes, DeriveOptions{TaxRatePercent: 1.125})
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	r := recs[0]
	if r.BuyPrice != 100 || r.SellPrice != 90 {
		t.Errorf("prices = %v/%v", r.BuyPrice, r.SellPrice)
	}
	wantMargin := 100*(1-1.125/100) - 90 // 8.875
	if r.Margin != wantMargin {
		t.Errorf("Margin = %v, want %v", r.Margin, wantMargin)
	}
	if *r.InstabuyRate != 12 || *r.InstasellRate != 12 {
		t.Errorf("rates = %v/%v, want 12/12", *r.InstabuyRate, *r.InstasellRate)
	}
	if want := wantMargin * 12; r.CoinsPerHour != want || math.Abs(want-106.5) > 1e-9 {
		t.Errorf("CoinsPerHour = %v, want 106.5", r.CoinsPerHour)
	}
}

func TestDerive_LiquidityFloorExample(t *testing.T) {
	// Identical quote but weeklyBuyVolume=840 → instabuyRate=5 → floor fails.
	quotes := []bazaar.RawQuote{
		quote("ITEM", 100, 90, fptr(840), fptr(2016)),
	}
	if recs := Derive(quotes, DeriveOptions{TaxRatePercent: 1.125}); len(recs) != 0 {
		t.Fatalf("throughput 5 must fail the >10 floor, got %+v", recs)
	}
}

func TestMargin_ExactAtBoundaryTaxes(t *testing.T) {
	if got := Margin(100, 90, 0); got != 10 {
		t.Errorf("tax 0: margin = %v, want 10", got)
	}
	if got := Margin(100, 90, 100); got != -90 {
		t.Errorf("tax 100: margin = %v, want -90", got)
	}
	if got := Margin(100, 90, 1.125); got != 100*(1-1.125/100)-90 {
		t.Errorf("tax 1.125: margin = %v", got)
	}
}

func TestDerive_ZeroVolumeExcluded(t *testing.T) {
	quotes := []bazaar.RawQuote{
		quote("A", 100, 90, fptr(0), fptr(2016)),
		quote("B", 100, 90, fptr(2016), fptr(0)),
		quote("C", 100, 90, nil, fptr(2016)), // absent buy volume treated as 0
	}
	if recs := Derive(quotes, DeriveOptions{TaxRatePercent: 1.125}); len(recs) != 0 {
		t.Fatalf("zero/absent volume on either side must exclude, got %+v", recs)
	}
}

func TestDerive_NonPositiveMarginExcluded(t *testing.T) {
	quotes := []bazaar.RawQuote{
		quote("FLAT", 100, 100, fptr(20000), fptr(20000)), // taxed margin < 0
		quote("THIN", 90, 89, fptr(20000), fptr(20000)),   // 90*0.98875-89 < 0
	}
	if recs := Derive(quotes, DeriveOptions{TaxRatePercent: 1.125}); len(recs) != 0 {
		t.Fatalf("non-positive margin must exclude, got %+v", recs)
	}
}

func TestDerive_EmptyBookSkipped(t *testing.T) {
	quotes := []bazaar.RawQuote{
		quote("NOBUY", 0, 90, fptr(20000), fptr(20000)),
		quote("NOSELL", 100, 0, fptr(20000), fptr(20000)),
	}
	if recs := Derive(quotes, DeriveOptions{TaxRatePercent: 1.125}); len(recs) != 0 {
		t.Fatalf("empty book yields zero reference price and must skip, got %+v", recs)
	}
}

func TestDerive_RankedDescendingAndTruncated(t *testing.T) {
	var quotes []bazaar.RawQuote
	for i := 0; i < 150; i++ {
		// Spread margins so coins/hour differ per item.
		quotes = append(quotes, quote(fmt.Sprintf("ITEM_%03d", i),
			100+float64(i), 50, fptr(20160), fptr(20160)))
	}
	recs := Derive(quotes, DeriveOptions{TaxRatePercent: 1.125})
	if len(recs) != DefaultMaxResults {
		t.Fatalf("len = %d, want truncation to %d", len(recs), DefaultMaxResults)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].CoinsPerHour > recs[i-1].CoinsPerHour {
			t.Fatalf("not descending at %d: %v > %v", i, recs[i].CoinsPerHour, recs[i-1].CoinsPerHour)
		}
	}
	if recs[0].ID != "ITEM_149" {
		t.Errorf("top record = %s, want highest-margin item", recs[0].ID)
	}
}

func TestDerive_Idempotent(t *testing.T) {
	quotes := []bazaar.RawQuote{
		quote("B", 100, 90, fptr(2016), fptr(2016)),
		quote("A", 100, 90, fptr(2016), fptr(2016)), // same CPH, tie-break on id
		quote("C", 200, 90, fptr(4032), fptr(4032)),
	}
	opts := DeriveOptions{TaxRatePercent: 1.125}
	first, err := json.Marshal(Derive(quotes, opts))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Derive(quotes, opts))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("identical snapshot must derive byte-identical output")
	}

	var recs []FlipRecord
	json.Unmarshal(first, &recs)
	if recs[1].ID != "A" || recs[2].ID != "B" {
		t.Errorf("tie-break order = %s,%s; want A,B", recs[1].ID, recs[2].ID)
	}
}

func TestDerive_MetricsAlwaysFinite(t *testing.T) {
	huge := math.MaxFloat64
	quotes := []bazaar.RawQuote{
		quote("HUGE", huge, 1, fptr(1e12), fptr(1e12)),
	}
	recs := Derive(quotes, DeriveOptions{TaxRatePercent: 1.125})
	for _, r := range recs {
		if math.IsNaN(r.Margin) || math.IsInf(r.Margin, 0) {
			t.Errorf("Margin not finite: %v", r.Margin)
		}
		if math.IsNaN(r.CoinsPerHour) || math.IsInf(r.CoinsPerHour, 0) {
			t.Errorf("CoinsPerHour not finite: %v", r.CoinsPerHour)
		}
	}
}

func TestReferencePrice_TopNMean(t *testing.T) {
	book := []bazaar.Order{{PricePerUnit: 100}, {PricePerUnit: 98}, {PricePerUnit: 90}}
	if got := referencePrice(book, 1); got != 100 {
		t.Errorf("top-1 = %v, want best price", got)
	}
	if got := referencePrice(book, 2); got != 99 {
		t.Errorf("top-2 mean = %v, want 99", got)
	}
	if got := referencePrice(book, 10); got != 96 {
		t.Errorf("N beyond book = %v, want mean of all (96)", got)
	}
	if got := referencePrice(nil, 1); got != 0 {
		t.Errorf("empty book = %v, want 0", got)
	}
}

func TestClampTax(t *testing.T) {
	if ClampTax(-1) != 0 || ClampTax(101) != 100 || ClampTax(1.125) != 1.125 {
		t.Error("ClampTax bounds wrong")
	}
	if ClampTax(math.NaN()) != 0 {
		t.Error("NaN tax should clamp to 0")
	}
}

func TestHourlyRate_Rounds(t *testing.T) {
	if got := hourlyRate(fptr(2016)); got != 12 {
		t.Errorf("2016/week = %v, want 12", got)
	}
	if got := hourlyRate(fptr(840)); got != 5 {
		t.Errorf("840/week = %v, want 5", got)
	}
	if got := hourlyRate(fptr(100)); got != 1 {
		t.Errorf("100/week = %v, want round(0.595)=1", got)
	}
	if got := hourlyRate(nil); got != 0 {
		t.Errorf("absent volume = %v, want 0", got)
	}
}
