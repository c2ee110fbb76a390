package usecase

import (
	"sync"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
)

// CandleAggregator folds ticks into OHLCV buckets at every supported
// interval and tracks which buckets carry unflushed changes. The dirty
// set is shared with the flusher goroutine, so it has its own lock.
type CandleAggregator struct {
	mu      sync.Mutex
	buckets map[models.CandleKey]*models.Candle
	dirty   map[models.CandleKey]struct{}
}

// NewCandleAggregator creates an empty aggregator.
func NewCandleAggregator() *CandleAggregator {
	return &CandleAggregator{
		buckets: make(map[models.CandleKey]*models.Candle),
		dirty:   make(map[models.CandleKey]struct{}),
	}
}

// Update folds one price observation into every interval's bucket.
// Called for every accepted tick, outliers included: candles reflect
// raw market action, only alerting treats outliers specially.
func (a *CandleAggregator) Update(pair string, tsMs int64, price, volume float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, iv := range domrepo.AllIntervals {
		key := models.CandleKey{
			Pair:        pair,
			Interval:    string(iv),
			BucketStart: iv.BucketStart(tsMs),
		}
		c, ok := a.buckets[key]
		if !ok {
			c = &models.Candle{
				Pair:        key.Pair,
				Interval:    key.Interval,
				BucketStart: key.BucketStart,
				Open:        price,
				High:        price,
				Low:         price,
				Close:       price,
				Volume:      volume,
			}
			a.buckets[key] = c
		} else {
			c.Apply(price, volume)
		}
		a.dirty[key] = struct{}{}
	}
}

// Bucket returns a copy of the bucket for key, if present.
func (a *CandleAggregator) Bucket(key models.CandleKey) (models.Candle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.buckets[key]
	if !ok {
		return models.Candle{}, false
	}
	return *c, true
}

// DirtyCount returns the number of buckets awaiting flush.
func (a *CandleAggregator) DirtyCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.dirty)
}

// TakeDirty snapshots every dirty bucket. The dirty flags stay set
// until ClearDirty confirms the flush, so a failed pass loses nothing.
func (a *CandleAggregator) TakeDirty() []models.Candle {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Candle, 0, len(a.dirty))
	for key := range a.dirty {
		if c, ok := a.buckets[key]; ok {
			out = append(out, *c)
		}
	}
	return out
}

// ClearDirty drops the dirty flag for a flushed bucket unless the
// bucket changed again after the snapshot was taken.
func (a *CandleAggregator) ClearDirty(snapshot models.Candle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := snapshot.Key()
	if cur, ok := a.buckets[key]; ok {
		if cur.Close != snapshot.Close || cur.Volume != snapshot.Volume ||
			cur.High != snapshot.High || cur.Low != snapshot.Low {
			return
		}
	}
	delete(a.dirty, key)
}
