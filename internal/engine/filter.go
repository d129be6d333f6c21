package engine

import (
	"math"
	"sort"
	"strings"
)

// Recompute returns a copy of recs with margin and coinsPerHour re-derived
// under taxPercent from the stored untaxed reference prices and throughput
// bounds. This is the "what if tax were X%" path; no refetch involved.
func Recompute(recs []FlipRecord, taxPercent float64) []FlipRecord {
	tax := ClampTax(taxPercent)
	out := make([]FlipRecord, len(recs))
	copy(out, recs)
	for i := range out {
		margin := Margin(out[i].BuyPrice, out[i].SellPrice, tax)
		out[i].Margin = sanitizeFloat(margin)
		out[i].CoinsPerHour = sanitizeFloat(margin * throughputBound(out[i]))
	}
	return out
}

// Apply runs the full client pipeline over a cached list: recompute under the
// live tax, blacklist, range filters, then a stable sort.
func Apply(recs []FlipRecord, fs FilterState) []FlipRecord {
	tax := DefaultTaxRatePercent
	if fs.TaxRatePercent != nil {
		tax = *fs.TaxRatePercent
	}
	out := Recompute(recs, tax)
	out = applyBlacklist(out, fs.Blacklist)
	out = applyRanges(out, fs.Ranges)
	sortRecords(out, fs.SortBy, fs.SortDir)
	return out
}

// applyBlacklist drops records whose title or raw text contains any
// comma-separated token, case-insensitively.
func applyBlacklist(recs []FlipRecord, blacklist string) []FlipRecord {
	tokens := blacklistTokens(blacklist)
	if len(tokens) == 0 {
		return recs
	}
	filtered := recs[:0]
	for _, r := range recs {
		haystack := strings.ToLower(r.Title + " " + r.Raw)
		drop := false
		for _, tok := range tokens {
			if strings.Contains(haystack, tok) {
				drop = true
				break
			}
		}
		if !drop {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func blacklistTokens(s string) []string {
	var tokens []string
	for _, raw := range strings.Split(s, ",") {
		tok := strings.ToLower(strings.TrimSpace(raw))
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// applyRanges drops records outside any bounded [min,max] range. An open
// bound defaults to the relevant infinity. A record whose field value is
// absent always fails a bounded check, it never passes by default.
func applyRanges(recs []FlipRecord, ranges map[Field]Bound) []FlipRecord {
	bounded := false
	for _, b := range ranges {
		if b.active() {
			bounded = true
			break
		}
	}
	if !bounded {
		return recs
	}

	filtered := recs[:0]
	for _, r := range recs {
		keep := true
		for field, b := range ranges {
			if !b.active() {
				continue
			}
			v, ok := fieldValue(r, field)
			if !ok {
				keep = false
				break
			}
			min, max := math.Inf(-1), math.Inf(1)
			if b.Min != nil {
				min = *b.Min
			}
			if b.Max != nil {
				max = *b.Max
			}
			if v < min || v > max {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// sortRecords stably sorts by the chosen field and direction. Absent values
// are treated as the minimum possible value in both directions, so ascending
// places them first and descending places them last. Equal keys preserve
// input order.
func sortRecords(recs []FlipRecord, by Field, dir string) {
	if by == "" {
		by = FieldCoinsPerHour
	}
	asc := dir == "asc"
	sort.SliceStable(recs, func(i, j int) bool {
		vi := sortValue(recs[i], by)
		vj := sortValue(recs[j], by)
		if asc {
			return vi < vj
		}
		return vi > vj
	})
}

func sortValue(r FlipRecord, f Field) float64 {
	v, ok := fieldValue(r, f)
	if !ok {
		return math.Inf(-1)
	}
	return v
}

func fieldValue(r FlipRecord, f Field) (float64, bool) {
	switch f {
	case FieldBuyPrice:
		return r.BuyPrice, true
	case FieldSellPrice:
		return r.SellPrice, true
	case FieldInstabuyRate:
		if r.InstabuyRate == nil {
			return 0, false
		}
		return *r.InstabuyRate, true
	case FieldInstasellRate:
		if r.InstasellRate == nil {
			return 0, false
		}
		return *r.InstasellRate, true
	case FieldMargin:
		return r.Margin, true
	case FieldCoinsPerHour:
		return r.CoinsPerHour, true
	}
	return 0, false
}

// throughputBound is the slower side of the round trip: a flip needs both an
// acquisition and a disposal. An unknown side bounds throughput at zero.
func throughputBound(r FlipRecord) float64 {
	if r.InstabuyRate == nil || r.InstasellRate == nil {
		return 0
	}
	return math.Min(*r.InstabuyRate, *r.InstasellRate)
}
