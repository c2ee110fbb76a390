package usecase

import (
	"math"
	"time"

	"github.com/google/uuid"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	xlogger "FxPulse/pkg/logger"
)

// alertKey identifies the cooldown/confirmation scope: one pair,
// one lookback window, one price type.
type alertKey struct {
	pair   string
	window int
	pt     models.PriceType
}

// AlertEngine evaluates accepted ticks against every configured window
// and emits rate-limited, severity-classified alerts. Not safe for
// concurrent use; the market engine serializes calls per its ingestion
// lock. Emission side effects go through the sink, which must not block.
type AlertEngine struct {
	cfg     *EngineConfig
	log     *xlogger.Logger
	metrics domrepo.Metrics

	lastAlert map[alertKey]time.Time
	extremes  map[alertKey]int
	recent    []*models.Alert // newest first, capacity cfg.AlertBuffer
	sink      func(*models.Alert)
}

// NewAlertEngine creates an alert engine. sink receives every emitted
// alert and may be nil.
func NewAlertEngine(cfg *EngineConfig, log *xlogger.Logger, metrics domrepo.Metrics, sink func(*models.Alert)) *AlertEngine {
	return &AlertEngine{
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
		lastAlert: make(map[alertKey]time.Time),
		extremes:  make(map[alertKey]int),
		sink:      sink,
	}
}

// Evaluate runs the full window sweep for one accepted tick. The tick
// may be flagged as an outlier here when a first extreme move is
// quarantined. Outlier ticks never alert; they are evaluated only so
// candles and ledger state stay consistent with the caller.
func (e *AlertEngine) Evaluate(ledger *TickLedger, t *models.Tick) {
	if t.Outlier {
		return
	}
	for _, window := range domrepo.AlertWindows {
		e.evaluateWindow(ledger, t, window)
		if t.Outlier {
			// quarantined by a narrower window; wider windows must not
			// alert off a tick we just declared implausible
			return
		}
	}
}

func (e *AlertEngine) evaluateWindow(ledger *TickLedger, t *models.Tick, window int) {
	key := alertKey{pair: t.Pair, window: window, pt: t.Type}
	windowMs := int64(window) * 60_000

	ref := ledger.ReferenceAt(t.Type, t.Timestamp-windowMs)
	if ref == nil || t.Timestamp-ref.Timestamp > windowMs+e.cfg.ReferenceTolerance.Milliseconds() {
		delete(e.extremes, key)
		return
	}

	changePct := (t.Price - ref.Price) / ref.Price * 100
	magnitude := math.Abs(changePct)

	threshold := e.cfg.Thresholds[window]
	if threshold <= 0 || magnitude < threshold {
		delete(e.extremes, key)
		return
	}

	if cap, ok := e.cfg.SanityCaps[window]; ok && magnitude > cap {
		e.log.Warn("discarding implausible window move",
			xlogger.String("pair", t.Pair),
			xlogger.Int("window_minutes", window),
			xlogger.Any("change_percent", changePct))
		return
	}

	if magnitude >= threshold*e.cfg.ExtremeMultiplier {
		e.extremes[key]++
		if e.extremes[key] < 2 {
			// quarantine: the move is too violent to trust from a single
			// tick, so the tick is excluded from future reference lookups
			// and a second consecutive extreme must confirm it
			t.Outlier = true
			return
		}
	}
	// any tick that gets this far is a trusted reading, so a later
	// extreme starts a fresh quarantine rather than confirming an old one
	delete(e.extremes, key)

	now := time.UnixMilli(t.Timestamp)
	if last, ok := e.lastAlert[key]; ok && now.Sub(last) < e.cfg.Cooldown {
		return
	}
	e.lastAlert[key] = now

	a := &models.Alert{
		ID:            uuid.NewString(),
		Pair:          t.Pair,
		WindowMinutes: window,
		PriceType:     t.Type,
		FromPrice:     ref.Price,
		ToPrice:       t.Price,
		ChangePercent: changePct,
		Severity:      e.classify(window, magnitude),
		TriggeredAt:   now,
	}
	e.push(a)
	e.metrics.RecordAlert(a.Pair, string(a.Severity))
	e.log.Info("market alert",
		xlogger.String("pair", a.Pair),
		xlogger.Int("window_minutes", a.WindowMinutes),
		xlogger.String("severity", string(a.Severity)),
		xlogger.Any("change_percent", a.ChangePercent))
	if e.sink != nil {
		e.sink(a)
	}
}

func (e *AlertEngine) classify(window int, magnitude float64) models.Severity {
	if cut, ok := e.cfg.HighSeverity[window]; ok && magnitude >= cut {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

// push prepends onto the bounded newest-first feed.
func (e *AlertEngine) push(a *models.Alert) {
	if len(e.recent) < e.cfg.AlertBuffer {
		e.recent = append(e.recent, nil)
	}
	copy(e.recent[1:], e.recent)
	e.recent[0] = a
}

// Recent returns up to limit alerts, newest first, optionally filtered
// by pair and a strict lower bound on trigger time.
func (e *AlertEngine) Recent(pair string, limit int, since time.Time) []models.Alert {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	out := make([]models.Alert, 0, limit)
	for _, a := range e.recent {
		if len(out) == limit {
			break
		}
		if pair != "" && a.Pair != pair {
			continue
		}
		if !since.IsZero() && !a.TriggeredAt.After(since) {
			continue
		}
		out = append(out, *a)
	}
	return out
}
