package middleware

import (
	"context"
	"sync"
	"testing"

	"FxPulse/internal/domain/models"
	"FxPulse/pkg/logger"
)

type countingSink struct {
	mu     sync.Mutex
	trades int
	quotes int
}

func (s *countingSink) IngestTrade(*models.TradeUpdate) {
	s.mu.Lock()
	s.trades++
	s.mu.Unlock()
}

func (s *countingSink) IngestQuote(*models.QuoteUpdate) {
	s.mu.Lock()
	s.quotes++
	s.mu.Unlock()
}

func (s *countingSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trades, s.quotes
}

type testMetrics struct {
	mu       sync.Mutex
	rejected map[string]int
}

func (m *testMetrics) RecordTickAccepted(string, string) {}
func (m *testMetrics) RecordTickRejected(_, reason string) {
	m.mu.Lock()
	if m.rejected == nil {
		m.rejected = make(map[string]int)
	}
	m.rejected[reason]++
	m.mu.Unlock()
}
func (m *testMetrics) RecordAlert(string, string)      {}
func (m *testMetrics) RecordLastPrice(string, float64) {}
func (m *testMetrics) RecordFlush(string, float64)     {}
func (m *testMetrics) RecordGauge(string, float64)     {}

func TestPipelineForwardsBufferedUpdates(t *testing.T) {
	sink := &countingSink{}
	p := NewIngestPipeline(sink, &testMetrics{}, logger.Nop(), WithMaxRate(1000))

	p.OfferTrade(&models.TradeUpdate{Pair: "EURUSD", Price: 1.0834})
	p.OfferQuote(&models.QuoteUpdate{Pair: "GBPUSD", Bid: 1.2650, Ask: 1.2652})

	// Stop drains what was buffered before the drain loop saw it
	p.Start(context.Background())
	p.Stop()

	tr, q := sink.counts()
	if tr != 1 || q != 1 {
		t.Fatalf("expected 1 trade and 1 quote, got %d/%d", tr, q)
	}
}

func TestPipelineThrottlesPerPair(t *testing.T) {
	sink := &countingSink{}
	m := &testMetrics{}
	p := NewIngestPipeline(sink, m, logger.Nop(), WithMaxRate(1))

	// burst of three on one pair: one token available
	for i := 0; i < 3; i++ {
		p.OfferTrade(&models.TradeUpdate{Pair: "EURUSD", Price: 1.0834})
	}
	// a different pair has its own bucket
	p.OfferTrade(&models.TradeUpdate{Pair: "GBPUSD", Price: 1.2650})

	p.Start(context.Background())
	p.Stop()

	tr, _ := sink.counts()
	if tr != 2 {
		t.Fatalf("expected 2 forwarded trades, got %d", tr)
	}
	if m.rejected["throttled"] != 2 {
		t.Fatalf("expected 2 throttled, got %d", m.rejected["throttled"])
	}
}

func TestPipelineDropsOnOverflow(t *testing.T) {
	sink := &countingSink{}
	m := &testMetrics{}
	p := NewIngestPipeline(sink, m, logger.Nop(), WithMaxRate(1000), WithBufferSize(2))

	for i := 0; i < 5; i++ {
		p.OfferTrade(&models.TradeUpdate{Pair: "EURUSD", Price: 1.0834})
	}

	p.Start(context.Background())
	p.Stop()

	tr, _ := sink.counts()
	if tr != 2 {
		t.Fatalf("expected buffer-limited 2 trades, got %d", tr)
	}
	if m.rejected["pipeline_overflow"] != 3 {
		t.Fatalf("expected 3 overflow drops, got %d", m.rejected["pipeline_overflow"])
	}
}

func TestPipelineIgnoresNil(t *testing.T) {
	sink := &countingSink{}
	p := NewIngestPipeline(sink, &testMetrics{}, logger.Nop())
	p.OfferTrade(nil)
	p.OfferQuote(&models.QuoteUpdate{})
	p.Start(context.Background())
	p.Stop()

	tr, q := sink.counts()
	if tr != 0 || q != 0 {
		t.Fatalf("expected nothing forwarded, got %d/%d", tr, q)
	}
}
