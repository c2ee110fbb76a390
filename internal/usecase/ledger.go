package usecase

import (
	"time"

	"FxPulse/internal/domain/models"
)

// TickLedger is a per-pair, insertion-ordered tick history pruned by
// age. Within one price type timestamps are non-decreasing; ticks that
// would violate that are rejected by the caller before Append.
// Not safe for concurrent use; the engine serializes access.
type TickLedger struct {
	ticks     []*models.Tick
	lastTs    map[models.PriceType]int64
	retention time.Duration
}

// NewTickLedger creates a ledger retaining ticks up to retention old.
func NewTickLedger(retention time.Duration) *TickLedger {
	return &TickLedger{
		lastTs:    make(map[models.PriceType]int64),
		retention: retention,
	}
}

// Accepts reports whether a tick of the given type and timestamp keeps
// per-type ordering. Equal timestamps are allowed.
func (l *TickLedger) Accepts(pt models.PriceType, tsMs int64) bool {
	return tsMs >= l.lastTs[pt]
}

// Append stores the tick and prunes anything older than the retention
// window relative to the new tick.
func (l *TickLedger) Append(t *models.Tick) {
	l.ticks = append(l.ticks, t)
	l.lastTs[t.Type] = t.Timestamp
	l.prune(t.Timestamp)
}

func (l *TickLedger) prune(nowMs int64) {
	minTs := nowMs - l.retention.Milliseconds()
	i := 0
	for i < len(l.ticks) && l.ticks[i].Timestamp < minTs {
		i++
	}
	if i > 0 {
		l.ticks = append(l.ticks[:0:0], l.ticks[i:]...)
	}
}

// Len returns the number of retained ticks.
func (l *TickLedger) Len() int { return len(l.ticks) }

// Latest returns the most recent tick of any type, or nil.
func (l *TickLedger) Latest() *models.Tick {
	var best *models.Tick
	for _, t := range l.ticks {
		if best == nil || t.Timestamp >= best.Timestamp {
			best = t
		}
	}
	return best
}

// ReferenceAt returns the most recent non-outlier tick of the given
// type at or before cutoff, or nil when none is retained.
func (l *TickLedger) ReferenceAt(pt models.PriceType, cutoffMs int64) *models.Tick {
	for i := len(l.ticks) - 1; i >= 0; i-- {
		t := l.ticks[i]
		if t.Type != pt || t.Outlier {
			continue
		}
		if t.Timestamp <= cutoffMs {
			return t
		}
	}
	return nil
}

// RecentClean returns up to n most recent non-outlier ticks of the
// given type, ordered oldest first. Used for outlier statistics.
func (l *TickLedger) RecentClean(pt models.PriceType, n int) []*models.Tick {
	out := make([]*models.Tick, 0, n)
	for i := len(l.ticks) - 1; i >= 0 && len(out) < n; i-- {
		t := l.ticks[i]
		if t.Type == pt && !t.Outlier {
			out = append(out, t)
		}
	}
	// reverse into chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
