package usecase

import (
	"context"
	"sync"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	xlogger "FxPulse/pkg/logger"
)

// MarketEngine owns all mutable streaming state: per-pair tick ledgers,
// the candle aggregator, the alert engine, and the price cache. Every
// ingestion step for a tick runs under one lock, which keeps the
// per-type ordering invariants trivially true. Alert side effects
// (persist, publish, fan-out) leave the hot path through a buffered
// dispatch channel and never block ingestion.
type MarketEngine struct {
	cfg     EngineConfig
	log     *xlogger.Logger
	metrics domrepo.Metrics

	mu      sync.Mutex
	ledgers map[string]*TickLedger
	alerts  *AlertEngine

	agg   *CandleAggregator
	cache *PriceCache

	dispatchCh chan *models.Alert
	bus        *AlertBus
	alertStore domrepo.AlertStore
	publisher  domrepo.AlertPublisher

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
}

// NewMarketEngine constructs an engine. alertStore and publisher may be
// nil; emission then stays in-memory only.
func NewMarketEngine(cfg EngineConfig, log *xlogger.Logger, metrics domrepo.Metrics, agg *CandleAggregator, alertStore domrepo.AlertStore, publisher domrepo.AlertPublisher) *MarketEngine {
	cfg.applyDefaults()
	e := &MarketEngine{
		cfg:        cfg,
		log:        log,
		metrics:    metrics,
		ledgers:    make(map[string]*TickLedger),
		agg:        agg,
		cache:      NewPriceCache(),
		dispatchCh: make(chan *models.Alert, 256),
		bus:        NewAlertBus(),
		alertStore: alertStore,
		publisher:  publisher,
		stopCh:     make(chan struct{}),
	}
	e.alerts = NewAlertEngine(&e.cfg, log, metrics, e.dispatch)
	return e
}

// Start launches the alert dispatcher goroutine.
func (e *MarketEngine) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		go e.dispatchLoop(ctx)
	})
}

// Stop terminates the dispatcher and closes subscriber channels.
func (e *MarketEngine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
		e.bus.Close()
	})
}

// Subscribe registers an alert subscriber with its own buffered
// channel. A slow subscriber loses alerts instead of stalling anyone.
func (e *MarketEngine) Subscribe(buffer int) (<-chan models.Alert, func()) {
	return e.bus.Subscribe(buffer)
}

// Aggregator exposes the candle aggregator for the flusher and the
// candle query path.
func (e *MarketEngine) Aggregator() *CandleAggregator { return e.agg }

// IngestTrade maps a raw trade onto a tick and runs the full ingestion
// path. Bad input is dropped with a log entry; a panic from one tick
// must never take the process down.
func (e *MarketEngine) IngestTrade(tr *models.TradeUpdate) {
	defer e.recoverIngest("trade")
	if tr == nil {
		return
	}
	pt := tr.Type
	if pt == "" {
		pt = models.PriceLast
	}
	ts := tr.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	if e.ingestTick(tr.Pair, ts, tr.Price, tr.Volume, pt) {
		e.cache.RecordTrade(tr.Pair, tr.Price, ts)
	}
}

// IngestQuote maps a two-sided quote onto a bid tick and an ask tick,
// and records the midpoint in the price cache.
func (e *MarketEngine) IngestQuote(q *models.QuoteUpdate) {
	defer e.recoverIngest("quote")
	if q == nil {
		return
	}
	ts := q.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	okBid := e.ingestTick(q.Pair, ts, q.Bid, 0, models.PriceBid)
	okAsk := e.ingestTick(q.Pair, ts, q.Ask, 0, models.PriceAsk)
	if okBid || okAsk {
		e.cache.RecordQuote(q.Pair, q.Bid, q.Ask, ts)
	}
}

func (e *MarketEngine) recoverIngest(kind string) {
	if r := recover(); r != nil {
		e.metrics.RecordTickRejected("", "panic")
		e.log.Error("panic during tick ingestion swallowed",
			xlogger.String("kind", kind), xlogger.Any("panic", r))
	}
}

// ingestTick is the serialized hot path: validate, order-check, outlier
// check, ledger append, candle update, alert sweep. Returns true if the
// tick was accepted.
func (e *MarketEngine) ingestTick(pair string, tsMs int64, price, volume float64, pt models.PriceType) bool {
	if issues := ValidateTick(pair, tsMs, price, pt); len(issues) > 0 {
		e.metrics.RecordTickRejected(pair, "invalid")
		e.log.Debug("tick rejected",
			xlogger.String("pair", pair), xlogger.Any("issues", issues))
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ledger, ok := e.ledgers[pair]
	if !ok {
		ledger = NewTickLedger(e.cfg.LedgerRetention)
		e.ledgers[pair] = ledger
	}
	if !ledger.Accepts(pt, tsMs) {
		e.metrics.RecordTickRejected(pair, "out_of_order")
		e.log.Debug("tick rejected out of order",
			xlogger.String("pair", pair), xlogger.String("type", string(pt)),
			xlogger.Int64("t", tsMs))
		return false
	}

	t := &models.Tick{Pair: pair, Type: pt, Price: price, Volume: volume, Timestamp: tsMs}
	t.Outlier = IsOutlier(ledger.RecentClean(pt, e.cfg.OutlierHistory), price, &e.cfg)

	ledger.Append(t)
	e.agg.Update(pair, tsMs, price, volume)
	e.alerts.Evaluate(ledger, t)

	e.metrics.RecordTickAccepted(pair, string(pt))
	e.metrics.RecordLastPrice(pair, price)
	e.metrics.RecordGauge("ledger_ticks_"+pair, float64(ledger.Len()))
	return true
}

// dispatch hands an emitted alert to the dispatcher without blocking.
func (e *MarketEngine) dispatch(a *models.Alert) {
	select {
	case e.dispatchCh <- a:
	default:
		e.metrics.RecordTickRejected(a.Pair, "alert_dispatch_overflow")
	}
}

func (e *MarketEngine) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case a := <-e.dispatchCh:
			e.deliver(ctx, a)
		}
	}
}

// deliver runs the slow alert side effects off the ingestion path.
// Persistence and publishing are both best-effort.
func (e *MarketEngine) deliver(ctx context.Context, a *models.Alert) {
	if e.alertStore != nil {
		cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := e.alertStore.InsertAlert(cctx, a); err != nil {
			e.log.Warn("alert persist failed", xlogger.Error(err))
		}
		cancel()
	}
	if e.publisher != nil {
		cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := e.publisher.Publish(cctx, a); err != nil {
			e.log.Warn("alert publish failed", xlogger.Error(err))
		}
		cancel()
	}
	e.bus.Broadcast(*a)
}

// LiveRates returns the synthesized quote for every supported pair.
func (e *MarketEngine) LiveRates() []models.LiveRate {
	return e.cache.LiveRates()
}

// RecentAlerts returns up to limit alerts, newest first.
func (e *MarketEngine) RecentAlerts(pair string, limit int, since time.Time) []models.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alerts.Recent(pair, limit, since)
}

// WindowSnapshot reports the reference price and percent change for
// each requested window of a pair's latest tick. Read-only: it uses the
// same staleness-tolerant lookup as alerting but has no side effects.
func (e *MarketEngine) WindowSnapshot(pair string, windows []int) (models.WindowSnapshot, bool) {
	if len(windows) == 0 {
		windows = domrepo.AlertWindows
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ledger, ok := e.ledgers[pair]
	if !ok {
		return models.WindowSnapshot{}, false
	}
	latest := ledger.Latest()
	if latest == nil {
		return models.WindowSnapshot{}, false
	}

	snap := models.WindowSnapshot{
		Pair:      pair,
		AsOf:      latest.Timestamp,
		LastPrice: latest.Price,
	}
	tol := e.cfg.ReferenceTolerance.Milliseconds()
	for _, w := range windows {
		windowMs := int64(w) * 60_000
		ref := ledger.ReferenceAt(latest.Type, latest.Timestamp-windowMs)
		if ref == nil || latest.Timestamp-ref.Timestamp > windowMs+tol {
			continue
		}
		snap.Windows = append(snap.Windows, models.WindowChange{
			WindowMinutes: w,
			FromPrice:     ref.Price,
			ToPrice:       latest.Price,
			ChangePercent: (latest.Price - ref.Price) / ref.Price * 100,
			ReferenceTs:   ref.Timestamp,
		})
	}
	return snap, true
}
