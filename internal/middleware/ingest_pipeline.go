package middleware

import (
	"context"
	"sync"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/internal/service/ratelimit"
	"FxPulse/pkg/logger"
)

// Ingestor is the downstream the pipeline feeds into.
type Ingestor interface {
	IngestTrade(tr *models.TradeUpdate)
	IngestQuote(q *models.QuoteUpdate)
}

type item struct {
	trade *models.TradeUpdate
	quote *models.QuoteUpdate
}

// IngestPipeline sits between the market feed and the engine. It
// throttles per pair and buffers bursts so a feed spike never blocks
// the websocket read loop. Updates beyond the buffer are dropped.
type IngestPipeline struct {
	sink    Ingestor
	metrics domrepo.Metrics
	log     *logger.Logger
	limiter *ratelimit.Limiter

	buf     chan item
	stopCh  chan struct{}
	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

type PipelineOption func(*IngestPipeline)

// WithMaxRate caps accepted updates per pair per second.
func WithMaxRate(perSec float64) PipelineOption {
	return func(p *IngestPipeline) {
		if perSec > 0 {
			p.limiter = ratelimit.New(perSec, perSec)
		}
	}
}

// WithBufferSize sets the burst buffer length.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.buf = make(chan item, n)
		}
	}
}

func NewIngestPipeline(sink Ingestor, metrics domrepo.Metrics, log *logger.Logger, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		sink:    sink,
		metrics: metrics,
		log:     log,
		limiter: ratelimit.New(50, 50),
		buf:     make(chan item, 1024),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the drain goroutine.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.drain(ctx)
}

func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
	p.wg.Wait()
}

// OfferTrade enqueues a trade update, applying the per-pair throttle.
func (p *IngestPipeline) OfferTrade(tr *models.TradeUpdate) {
	if tr == nil || tr.Pair == "" {
		return
	}
	if !p.limiter.Allow(tr.Pair) {
		p.metrics.RecordTickRejected(tr.Pair, "throttled")
		return
	}
	p.enqueue(item{trade: tr}, tr.Pair)
}

// OfferQuote enqueues a quote update, applying the per-pair throttle.
func (p *IngestPipeline) OfferQuote(q *models.QuoteUpdate) {
	if q == nil || q.Pair == "" {
		return
	}
	if !p.limiter.Allow(q.Pair) {
		p.metrics.RecordTickRejected(q.Pair, "throttled")
		return
	}
	p.enqueue(item{quote: q}, q.Pair)
}

func (p *IngestPipeline) enqueue(it item, pair string) {
	select {
	case p.buf <- it:
		p.metrics.RecordGauge("pipeline_buffer_depth", float64(len(p.buf)))
	default:
		p.metrics.RecordTickRejected(pair, "pipeline_overflow")
		p.log.Warn("ingest pipeline buffer full, dropping update", logger.String("pair", pair))
	}
}

func (p *IngestPipeline) drain(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			// flush whatever is already buffered
			for {
				select {
				case it := <-p.buf:
					p.forward(it)
				default:
					return
				}
			}
		case it := <-p.buf:
			p.forward(it)
		}
	}
}

func (p *IngestPipeline) forward(it item) {
	switch {
	case it.trade != nil:
		p.sink.IngestTrade(it.trade)
	case it.quote != nil:
		p.sink.IngestQuote(it.quote)
	}
}
