package usecase

import (
	"context"
	"time"

	"FxPulse/internal/domain/models"
	domrepo "FxPulse/internal/domain/repository"
	"FxPulse/pkg/logger"
)

// nopMetrics satisfies the Metrics interface without touching the
// global Prometheus registry, so tests can build many engines.
type nopMetrics struct{}

func (nopMetrics) RecordTickAccepted(string, string) {}
func (nopMetrics) RecordTickRejected(string, string) {}
func (nopMetrics) RecordAlert(string, string)        {}
func (nopMetrics) RecordLastPrice(string, float64)   {}
func (nopMetrics) RecordFlush(string, float64)       {}
func (nopMetrics) RecordGauge(string, float64)       {}

func testEngineConfig() EngineConfig {
	return DefaultEngineConfig()
}

func newTestEngine() *MarketEngine {
	return NewMarketEngine(testEngineConfig(), logger.Nop(), nopMetrics{}, NewCandleAggregator(), nil, nil)
}

// fakeCandleStore records upserts and can fail with an injected error.
type fakeCandleStore struct {
	upserts int
	failErr error
	rows    []models.Candle
}

func (s *fakeCandleStore) Init(context.Context) error { return nil }

func (s *fakeCandleStore) UpsertCandle(_ context.Context, c *models.Candle) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.upserts++
	s.rows = append(s.rows, *c)
	return nil
}

func (s *fakeCandleStore) GetCandles(_ context.Context, pair string, iv domrepo.Interval, from, to time.Time, limit int) ([]models.Candle, error) {
	out := make([]models.Candle, 0, len(s.rows))
	for _, c := range s.rows {
		if c.Pair == pair && c.Interval == string(iv) && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCandleStore) Health(context.Context) error { return nil }
func (s *fakeCandleStore) Close() error                 { return nil }
