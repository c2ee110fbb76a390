package usecase

import "time"

// EngineConfig carries every tunable of the market engine. All fields
// are optional; zero values are replaced by the documented defaults.
type EngineConfig struct {
	// Per-window alert thresholds, percent change over the window.
	Thresholds map[int]float64
	// Per-window hard sanity caps, percent. Moves beyond the cap are
	// treated as feed corruption and never alerted on.
	SanityCaps map[int]float64
	// Per-window magnitude, percent, at which severity escalates to high.
	HighSeverity map[int]float64

	ExtremeMultiplier  float64       // threshold multiple that triggers quarantine
	Cooldown           time.Duration // minimum gap between alerts for one key
	ReferenceTolerance time.Duration // staleness slack on window reference lookups
	MaxTickReturn      float64       // absolute tick-to-tick return cap, percent
	ZScoreLimit        float64       // outlier deviation multiple
	OutlierHistory     int           // same-type ticks inspected for outlier stats

	FlushInterval   time.Duration // candle flush cadence
	FlushBackoff    time.Duration // retry-after on transient store failure
	LedgerRetention time.Duration // max age of retained ticks
	AlertBuffer     int           // recent-alert ring capacity
}

// DefaultEngineConfig returns the engine defaults.
func DefaultEngineConfig() EngineConfig {
	cfg := EngineConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *EngineConfig) applyDefaults() {
	if c.Thresholds == nil {
		c.Thresholds = map[int]float64{1: 0.12, 15: 0.35, 60: 0.60, 240: 1.0, 1440: 1.8}
	}
	if c.SanityCaps == nil {
		c.SanityCaps = map[int]float64{1: 3, 15: 5, 60: 8, 240: 12, 1440: 20}
	}
	if c.HighSeverity == nil {
		c.HighSeverity = map[int]float64{1: 0.5, 15: 1.0, 60: 1.5, 240: 2.0, 1440: 3.0}
	}
	if c.ExtremeMultiplier <= 0 {
		c.ExtremeMultiplier = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 10 * time.Minute
	}
	if c.ReferenceTolerance <= 0 {
		c.ReferenceTolerance = 5 * time.Second
	}
	if c.MaxTickReturn <= 0 {
		c.MaxTickReturn = 0.5
	}
	if c.ZScoreLimit <= 0 {
		c.ZScoreLimit = 5
	}
	if c.OutlierHistory <= 0 {
		c.OutlierHistory = 20
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 5 * time.Second
	}
	if c.FlushBackoff <= 0 {
		c.FlushBackoff = 30 * time.Second
	}
	if c.LedgerRetention <= 0 {
		c.LedgerRetention = 26 * time.Hour
	}
	if c.AlertBuffer <= 0 {
		c.AlertBuffer = 500
	}
}
