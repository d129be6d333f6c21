package engine

const (
	// DefaultTaxRatePercent is the exchange's sale-side tax when the caller
	// supplies none.
	DefaultTaxRatePercent = 1.125
	// DefaultMaxResults is the ranked-list truncation limit.
	DefaultMaxResults = 100
	// HoursPerWeek converts weekly executed volume to an hourly rate.
	HoursPerWeek = 168
	// MinFlipsPerHour is the liquidity floor: items whose slower trade side
	// executes this often or less are statistical noise and are dropped.
	MinFlipsPerHour = 10
)

// Field names a numeric FlipRecord field that filters and sorts can target.
type Field string

const (
	FieldBuyPrice      Field = "buyPrice"
	FieldSellPrice     Field = "sellPrice"
	FieldInstabuyRate  Field = "instabuyRate"
	FieldInstasellRate Field = "instasellRate"
	FieldMargin        Field = "margin"
	FieldCoinsPerHour  Field = "coinsPerHour"
)

// FlipRecord is one qualifying item's derived flip opportunity.
// BuyPrice/SellPrice are the untaxed reference prices and the rates are the
// raw throughput estimates, so margin and coinsPerHour can be recomputed
// under any tax rate without refetching. Margin and CoinsPerHour are always
// finite; records that would carry null metrics are never emitted.
type FlipRecord struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	BuyPrice      float64  `json:"buyPrice"`
	SellPrice     float64  `json:"sellPrice"`
	InstabuyRate  *float64 `json:"instabuyRate"`  // executions/hour, nil = unknown
	InstasellRate *float64 `json:"instasellRate"` // executions/hour, nil = unknown
	Margin        float64  `json:"margin"`
	CoinsPerHour  float64  `json:"coinsPerHour"`
	Href          string   `json:"href,omitempty"`
	Img           string   `json:"img,omitempty"`
	Raw           string   `json:"raw,omitempty"`
}

// Bound is an optional numeric range. Min and Max are independently optional;
// nothing enforces Min <= Max here; that is a UI concern, not an engine
// invariant.
type Bound struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (b Bound) active() bool {
	return b.Min != nil || b.Max != nil
}

// FilterState is the client-held filter, sort, and tax selection.
type FilterState struct {
	Ranges         map[Field]Bound `json:"filters,omitempty"`
	Blacklist      string          `json:"blacklist,omitempty"`
	TaxRatePercent *float64        `json:"tax,omitempty"` // nil = default
	SortBy         Field           `json:"sortBy,omitempty"`
	SortDir        string          `json:"sortDir,omitempty"` // "asc" or "desc"
}

// DefaultFilterState returns the state a fresh client starts from.
func DefaultFilterState() FilterState {
	return FilterState{
		Ranges:  map[Field]Bound{},
		SortBy:  FieldCoinsPerHour,
		SortDir: "desc",
	}
}
