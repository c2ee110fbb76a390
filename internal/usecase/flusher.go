package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	domrepo "FxPulse/internal/domain/repository"
	xlogger "FxPulse/pkg/logger"
)

// CandleFlusher periodically drains dirty candle buckets into the
// durable store. Transient failures back off and retry on a later
// pass; permanent failures disable the flusher for the process
// lifetime and the engine keeps running in memory only.
type CandleFlusher struct {
	agg     *CandleAggregator
	store   domrepo.CandleStore
	metrics domrepo.Metrics
	log     *xlogger.Logger

	interval time.Duration
	backoff  time.Duration

	mu          sync.Mutex
	disabled    bool
	retryAfter  time.Time
	lastWarnAt  time.Time
	stopCh      chan struct{}
	stopOnce    sync.Once
	startedOnce sync.Once
}

// NewCandleFlusher creates a flusher. A nil store disables persistence
// immediately; candles stay query-only in memory.
func NewCandleFlusher(agg *CandleAggregator, store domrepo.CandleStore, metrics domrepo.Metrics, log *xlogger.Logger, cfg *EngineConfig) *CandleFlusher {
	f := &CandleFlusher{
		agg:      agg,
		store:    store,
		metrics:  metrics,
		log:      log,
		interval: cfg.FlushInterval,
		backoff:  cfg.FlushBackoff,
		stopCh:   make(chan struct{}),
	}
	if store == nil {
		f.disabled = true
		log.Warn("candle persistence unavailable, running in memory only")
	}
	return f
}

// Start launches the flush loop. Safe to call once.
func (f *CandleFlusher) Start(ctx context.Context) {
	f.startedOnce.Do(func() {
		go f.loop(ctx)
	})
}

// Stop terminates the loop after a final best-effort drain.
func (f *CandleFlusher) Stop() {
	f.stopOnce.Do(func() { close(f.stopCh) })
}

// Disabled reports whether the flusher has shut itself off.
func (f *CandleFlusher) Disabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disabled
}

func (f *CandleFlusher) loop(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.stopCh:
			f.FlushOnce(context.Background())
			return
		case <-ticker.C:
			f.FlushOnce(ctx)
		}
	}
}

// FlushOnce runs a single flush pass. Exported so shutdown and tests
// can drain without the timer.
func (f *CandleFlusher) FlushOnce(ctx context.Context) {
	f.mu.Lock()
	if f.disabled || time.Now().Before(f.retryAfter) {
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	dirty := f.agg.TakeDirty()
	if len(dirty) == 0 {
		return
	}

	start := time.Now()
	for i := range dirty {
		c := dirty[i]
		if err := f.store.UpsertCandle(ctx, &c); err != nil {
			if isTransientStoreErr(err) {
				f.deferPass(err)
			} else {
				f.disable(err)
			}
			f.metrics.RecordFlush("error", time.Since(start).Seconds())
			return
		}
		f.agg.ClearDirty(c)
	}
	f.metrics.RecordFlush("ok", time.Since(start).Seconds())
	f.metrics.RecordGauge("dirty_buckets", float64(f.agg.DirtyCount()))
}

// deferPass records a retry-after time and logs at most once per
// backoff window to avoid log storms while the store is down.
func (f *CandleFlusher) deferPass(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retryAfter = time.Now().Add(f.backoff)
	if time.Since(f.lastWarnAt) >= f.backoff {
		f.lastWarnAt = time.Now()
		f.log.Warn("candle flush deferred on transient store failure", xlogger.Error(err))
	}
}

func (f *CandleFlusher) disable(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disabled {
		return
	}
	f.disabled = true
	f.log.Error("candle flusher disabled on permanent store failure", xlogger.Error(err))
}

// isTransientStoreErr classifies connectivity-shaped failures that are
// worth retrying. Anything else (bad schema, bad statement) is
// permanent.
func isTransientStoreErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"timeout",
		"deadline exceeded",
		"no such host",
		"eof",
		"temporarily unavailable",
	} {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
