package models

// PriceType identifies which side of the market a tick observes.
// Ticks of different types are tracked independently for outlier
// detection and window reference lookups.
type PriceType string

const (
	PriceBid  PriceType = "bid"
	PriceAsk  PriceType = "ask"
	PriceMid  PriceType = "mid"
	PriceLast PriceType = "last"
)

// IsValidPriceType returns true if pt is one of the allowed price types.
func IsValidPriceType(pt PriceType) bool {
	switch pt {
	case PriceBid, PriceAsk, PriceMid, PriceLast:
		return true
	default:
		return false
	}
}

// Tick is a single accepted price observation. Immutable once stored,
// except for the Outlier flag which the alert engine may set when an
// extreme move is quarantined.
type Tick struct {
	Pair      string
	Type      PriceType
	Price     float64
	Volume    float64
	Timestamp int64 // unix ms
	Outlier   bool
}

// TradeUpdate is the raw trade shape delivered by the transport layer.
type TradeUpdate struct {
	Pair      string    `json:"pair"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume,omitempty"`
	Timestamp int64     `json:"t,omitempty"` // unix ms; 0 means "now"
	Type      PriceType `json:"type,omitempty"`
}

// QuoteUpdate is the raw two-sided quote shape delivered by the transport layer.
type QuoteUpdate struct {
	Pair      string  `json:"pair"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Timestamp int64   `json:"t,omitempty"`
}

// Mid returns the quote midpoint.
func (q QuoteUpdate) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}
