package repository

import "time"

// Interval represents a candle resolution bucket.
type Interval string

const (
	IV1m  Interval = "1m"
	IV15m Interval = "15m"
	IV1h  Interval = "1h"
	IV4h  Interval = "4h"
	IV1d  Interval = "1d"
)

// AllIntervals lists every resolution candles are aggregated at,
// narrowest first.
var AllIntervals = []Interval{IV1m, IV15m, IV1h, IV4h, IV1d}

// IsValidInterval returns true if iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case IV1m, IV15m, IV1h, IV4h, IV1d:
		return true
	default:
		return false
	}
}

// Duration returns the bucket width of the interval.
func (iv Interval) Duration() time.Duration {
	switch iv {
	case IV1m:
		return time.Minute
	case IV15m:
		return 15 * time.Minute
	case IV1h:
		return time.Hour
	case IV4h:
		return 4 * time.Hour
	case IV1d:
		return 24 * time.Hour
	default:
		return time.Minute
	}
}

// BucketStart floors a unix-ms timestamp to the interval boundary.
// The daily interval is aligned to UTC midnight rather than raw modulo
// arithmetic, so daylight-free calendar days land where operators expect.
func (iv Interval) BucketStart(tsMs int64) int64 {
	if iv == IV1d {
		t := time.UnixMilli(tsMs).UTC()
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return midnight.UnixMilli()
	}
	w := iv.Duration().Milliseconds()
	return tsMs - tsMs%w
}

// NormalizeInterval converts a raw string to a valid interval (or 1m).
func NormalizeInterval(s string) Interval {
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return IV1m
}

// AlertWindows lists the lookback windows, in minutes, every accepted
// tick is evaluated against.
var AlertWindows = []int{1, 15, 60, 240, 1440}
