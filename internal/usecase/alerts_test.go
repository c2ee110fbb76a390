package usecase

import (
	"testing"
	"time"

	"FxPulse/internal/domain/models"
	"FxPulse/pkg/logger"
)

func newTestAlertEngine() (*AlertEngine, *[]*models.Alert) {
	cfg := testEngineConfig()
	var emitted []*models.Alert
	ae := NewAlertEngine(&cfg, logger.Nop(), nopMetrics{}, func(a *models.Alert) {
		emitted = append(emitted, a)
	})
	return ae, &emitted
}

// appendEval mirrors the engine's order: ledger append first, then the
// alert sweep which may flag the appended tick.
func appendEval(ae *AlertEngine, l *TickLedger, tick *models.Tick) {
	l.Append(tick)
	ae.Evaluate(l, tick)
}

func tick(price float64, ts int64) *models.Tick {
	return &models.Tick{Pair: "EURUSD", Type: models.PriceLast, Price: price, Timestamp: ts}
}

func TestAlertThresholdCrossing(t *testing.T) {
	ae, emitted := newTestAlertEngine()
	l := NewTickLedger(26 * time.Hour)

	appendEval(ae, l, tick(1.0000, baseTs))
	// +0.13% over one minute crosses the 0.12% threshold
	appendEval(ae, l, tick(1.0013, baseTs+60_000))

	if len(*emitted) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(*emitted))
	}
	a := (*emitted)[0]
	if a.WindowMinutes != 1 || a.Severity != models.SeverityMedium {
		t.Fatalf("unexpected alert %+v", a)
	}
	if a.FromPrice != 1.0000 || a.ToPrice != 1.0013 {
		t.Fatalf("unexpected prices %+v", a)
	}
	if a.ID == "" {
		t.Fatalf("alert must carry an id")
	}
}

func TestAlertBelowThresholdSilent(t *testing.T) {
	ae, emitted := newTestAlertEngine()
	l := NewTickLedger(26 * time.Hour)

	appendEval(ae, l, tick(1.0000, baseTs))
	appendEval(ae, l, tick(1.0011, baseTs+60_000)) // +0.11%

	if len(*emitted) != 0 {
		t.Fatalf("expected silence, got %d alerts", len(*emitted))
	}
}

func TestAlertCooldownSuppression(t *testing.T) {
	ae, emitted := newTestAlertEngine()
	l := NewTickLedger(26 * time.Hour)

	appendEval(ae, l, tick(1.0000, baseTs))
	appendEval(ae, l, tick(1.0013, baseTs+60_000))
	if len(*emitted) != 1 {
		t.Fatalf("expected first alert")
	}

	// same condition two minutes later, still inside the 10m cooldown
	appendEval(ae, l, tick(1.0026, baseTs+120_000))
	if len(*emitted) != 1 {
		t.Fatalf("cooldown must suppress, got %d", len(*emitted))
	}

	// past the cooldown the window may alert again
	appendEval(ae, l, tick(1.0030, baseTs+11*60_000))
	appendEval(ae, l, tick(1.0043, baseTs+12*60_000))
	if len(*emitted) != 2 {
		t.Fatalf("expected alert after cooldown, got %d", len(*emitted))
	}
}

func TestAlertSanityCapDiscards(t *testing.T) {
	ae, emitted := newTestAlertEngine()
	l := NewTickLedger(26 * time.Hour)

	appendEval(ae, l, tick(1.0000, baseTs))
	// +4% over one minute exceeds the 3% cap: corruption, not an alert
	moved := tick(1.0400, baseTs+60_000)
	appendEval(ae, l, moved)

	if len(*emitted) != 0 {
		t.Fatalf("capped move must not alert, got %d", len(*emitted))
	}
	if moved.Outlier {
		t.Fatalf("capped move is discarded, not quarantined")
	}
}

func TestAlertExtremeQuarantineThenConfirm(t *testing.T) {
	ae, emitted := newTestAlertEngine()
	l := NewTickLedger(26 * time.Hour)

	appendEval(ae, l, tick(1.0000, baseTs))
	// +0.70% over one minute is past 5x the threshold but under the cap
	first := tick(1.0070, baseTs+60_000)
	appendEval(ae, l, first)

	if !first.Outlier {
		t.Fatalf("first extreme must be quarantined")
	}
	if len(*emitted) != 0 {
		t.Fatalf("quarantined tick must not alert")
	}

	// a second consecutive extreme confirms the move
	second := tick(1.0071, baseTs+61_000)
	appendEval(ae, l, second)

	if second.Outlier {
		t.Fatalf("confirming tick is not an outlier")
	}
	if len(*emitted) != 1 {
		t.Fatalf("expected confirmation alert, got %d", len(*emitted))
	}
	if (*emitted)[0].Severity != models.SeverityHigh {
		t.Fatalf("a 0.7%% one-minute move is high severity")
	}
}

func TestAlertExtremeCounterResets(t *testing.T) {
	ae, emitted := newTestAlertEngine()
	l := NewTickLedger(26 * time.Hour)

	appendEval(ae, l, tick(1.0000, baseTs))
	first := tick(1.0070, baseTs+60_000)
	appendEval(ae, l, first)
	if !first.Outlier {
		t.Fatalf("expected quarantine")
	}

	// the next tick is calm: the extreme streak is over
	calm := tick(1.0001, baseTs+61_000)
	appendEval(ae, l, calm)
	if calm.Outlier || len(*emitted) != 0 {
		t.Fatalf("calm tick must reset quietly")
	}

	// a later lone extreme quarantines again instead of confirming
	again := tick(1.0072, baseTs+62_000)
	appendEval(ae, l, again)
	if !again.Outlier {
		t.Fatalf("extreme after reset must quarantine anew")
	}
	if len(*emitted) != 0 {
		t.Fatalf("no alert expected, got %d", len(*emitted))
	}
}

func TestAlertModerateMoveBreaksExtremeStreak(t *testing.T) {
	ae, emitted := newTestAlertEngine()
	l := NewTickLedger(26 * time.Hour)

	appendEval(ae, l, tick(1.0000, baseTs))
	first := tick(1.0070, baseTs+60_000)
	appendEval(ae, l, first)
	if !first.Outlier {
		t.Fatalf("expected quarantine")
	}

	// an above-threshold but non-extreme move is a trusted reading and
	// alerts on its own
	moderate := tick(1.0020, baseTs+61_000)
	appendEval(ae, l, moderate)
	if moderate.Outlier {
		t.Fatalf("moderate move is not an outlier")
	}
	if len(*emitted) != 1 {
		t.Fatalf("expected moderate alert, got %d", len(*emitted))
	}

	// the next extreme is not consecutive with the first one, so it
	// starts a fresh quarantine instead of confirming
	again := tick(1.0070, baseTs+62_000)
	appendEval(ae, l, again)
	if !again.Outlier {
		t.Fatalf("extreme after a trusted reading must quarantine anew")
	}
	if len(*emitted) != 1 {
		t.Fatalf("quarantined tick must not alert, got %d", len(*emitted))
	}
}

func TestAlertOutlierTickIgnored(t *testing.T) {
	ae, emitted := newTestAlertEngine()
	l := NewTickLedger(26 * time.Hour)

	appendEval(ae, l, tick(1.0000, baseTs))
	out := tick(1.0013, baseTs+60_000)
	out.Outlier = true
	appendEval(ae, l, out)

	if len(*emitted) != 0 {
		t.Fatalf("outlier ticks never alert")
	}
}

func TestAlertStaleReferenceSkipsWindow(t *testing.T) {
	ae, emitted := newTestAlertEngine()
	l := NewTickLedger(26 * time.Hour)

	appendEval(ae, l, tick(1.0000, baseTs))
	// the reference is 90s old: outside the one-minute window plus the
	// 5s tolerance, so the window has no usable baseline
	appendEval(ae, l, tick(1.0013, baseTs+90_000))

	if len(*emitted) != 0 {
		t.Fatalf("stale reference must not alert, got %d", len(*emitted))
	}
}

func TestAlertRecentFiltering(t *testing.T) {
	ae, emitted := newTestAlertEngine()
	l := NewTickLedger(26 * time.Hour)

	appendEval(ae, l, tick(1.0000, baseTs))
	appendEval(ae, l, tick(1.0013, baseTs+60_000))
	if len(*emitted) != 1 {
		t.Fatalf("fixture expected one alert")
	}

	got := ae.Recent("", 10, time.Time{})
	if len(got) != 1 || got[0].Pair != "EURUSD" {
		t.Fatalf("unexpected recent %v", got)
	}
	if n := len(ae.Recent("GBPUSD", 10, time.Time{})); n != 0 {
		t.Fatalf("pair filter failed, got %d", n)
	}
	if n := len(ae.Recent("", 10, time.UnixMilli(baseTs+120_000))); n != 0 {
		t.Fatalf("since filter failed, got %d", n)
	}
}
