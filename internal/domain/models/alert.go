package models

import "time"

// Severity classifies how significant an alert is.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Alert is raised when a pair's price move over a lookback window
// crosses its configured threshold.
type Alert struct {
	ID            string    `json:"id"`
	Pair          string    `json:"pair"`
	WindowMinutes int       `json:"window_minutes"`
	PriceType     PriceType `json:"price_type"`
	FromPrice     float64   `json:"from_price"`
	ToPrice       float64   `json:"to_price"`
	ChangePercent float64   `json:"change_percent"`
	Severity      Severity  `json:"severity"`
	TriggeredAt   time.Time `json:"triggered_at"`
}

// LiveRate is a synthesized quote for one pair, served from the price cache.
type LiveRate struct {
	Pair      string  `json:"pair"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Mid       float64 `json:"mid"`
	Spread    float64 `json:"spread"`
	Timestamp int64   `json:"t"`
}

// WindowChange reports the price change over one lookback window.
type WindowChange struct {
	WindowMinutes int     `json:"window_minutes"`
	FromPrice     float64 `json:"from_price"`
	ToPrice       float64 `json:"to_price"`
	ChangePercent float64 `json:"change_percent"`
	ReferenceTs   int64   `json:"reference_t"`
}

// WindowSnapshot is the side-effect-free multi-window view of a pair,
// consumed by downstream advisory components.
type WindowSnapshot struct {
	Pair      string         `json:"pair"`
	AsOf      int64          `json:"as_of"`
	LastPrice float64        `json:"last_price"`
	Windows   []WindowChange `json:"windows"`
}
