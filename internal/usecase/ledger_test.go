package usecase

import (
	"testing"
	"time"

	"FxPulse/internal/domain/models"
)

func lticks(l *TickLedger, pt models.PriceType, start int64, prices ...float64) {
	for i, p := range prices {
		l.Append(&models.Tick{
			Pair:      "EURUSD",
			Type:      pt,
			Price:     p,
			Timestamp: start + int64(i)*1000,
		})
	}
}

func TestLedgerOrderingPerType(t *testing.T) {
	l := NewTickLedger(time.Hour)
	lticks(l, models.PriceLast, baseTs, 1.0001)

	if l.Accepts(models.PriceLast, baseTs-1) {
		t.Fatalf("older same-type tick must be rejected")
	}
	if !l.Accepts(models.PriceLast, baseTs) {
		t.Fatalf("equal timestamp must be accepted")
	}
	// ordering is tracked per price type
	if !l.Accepts(models.PriceBid, baseTs-5000) {
		t.Fatalf("other type must have independent ordering")
	}
}

func TestLedgerPruneByAge(t *testing.T) {
	l := NewTickLedger(10 * time.Second)
	lticks(l, models.PriceLast, baseTs, 1.0001, 1.0002)
	if l.Len() != 2 {
		t.Fatalf("expected 2 ticks, got %d", l.Len())
	}
	// a tick 30s later pushes the first two out of the window
	lticks(l, models.PriceLast, baseTs+30_000, 1.0003)
	if l.Len() != 1 {
		t.Fatalf("expected prune to 1 tick, got %d", l.Len())
	}
	if l.Latest().Price != 1.0003 {
		t.Fatalf("unexpected latest %v", l.Latest().Price)
	}
}

func TestLedgerReferenceAt(t *testing.T) {
	l := NewTickLedger(time.Hour)
	lticks(l, models.PriceLast, baseTs, 1.0001, 1.0002, 1.0003)

	ref := l.ReferenceAt(models.PriceLast, baseTs+1000)
	if ref == nil || ref.Price != 1.0002 {
		t.Fatalf("expected newest tick at/before cutoff, got %+v", ref)
	}
	if l.ReferenceAt(models.PriceLast, baseTs-1) != nil {
		t.Fatalf("expected nil before first tick")
	}
	if l.ReferenceAt(models.PriceBid, baseTs+5000) != nil {
		t.Fatalf("expected nil for absent type")
	}
}

func TestLedgerReferenceSkipsOutliers(t *testing.T) {
	l := NewTickLedger(time.Hour)
	lticks(l, models.PriceLast, baseTs, 1.0001)
	l.Append(&models.Tick{
		Pair: "EURUSD", Type: models.PriceLast,
		Price: 1.0500, Timestamp: baseTs + 1000, Outlier: true,
	})

	ref := l.ReferenceAt(models.PriceLast, baseTs+2000)
	if ref == nil || ref.Price != 1.0001 {
		t.Fatalf("outlier must be skipped, got %+v", ref)
	}
}

func TestLedgerRecentClean(t *testing.T) {
	l := NewTickLedger(time.Hour)
	lticks(l, models.PriceLast, baseTs, 1.0001, 1.0002)
	l.Append(&models.Tick{
		Pair: "EURUSD", Type: models.PriceLast,
		Price: 1.0500, Timestamp: baseTs + 2000, Outlier: true,
	})
	lticks(l, models.PriceLast, baseTs+3000, 1.0003)

	got := l.RecentClean(models.PriceLast, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 ticks, got %d", len(got))
	}
	if got[0].Price != 1.0002 || got[1].Price != 1.0003 {
		t.Fatalf("expected chronological clean ticks, got %v %v", got[0].Price, got[1].Price)
	}
}
