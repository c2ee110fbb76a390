package models

// Candle is an OHLCV aggregate for one pair and interval bucket.
// Identity is (Pair, Interval, BucketStart).
type Candle struct {
	Pair        string  `json:"pair"`
	Interval    string  `json:"interval"`
	BucketStart int64   `json:"bucket_start"` // unix ms, aligned to the interval boundary
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
}

// CandleKey identifies a candle bucket.
type CandleKey struct {
	Pair        string
	Interval    string
	BucketStart int64
}

// Key returns the bucket identity of c.
func (c *Candle) Key() CandleKey {
	return CandleKey{Pair: c.Pair, Interval: c.Interval, BucketStart: c.BucketStart}
}

// Apply folds a price observation into the candle.
func (c *Candle) Apply(price, volume float64) {
	if price > c.High {
		c.High = price
	}
	if price < c.Low {
		c.Low = price
	}
	c.Close = price
	c.Volume += volume
}
