package repository

import (
	"context"
	"time"

	"FxPulse/internal/domain/models"
)

// MarketStream is an upstream price feed delivering trades and quotes.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.TradeUpdate, <-chan *models.QuoteUpdate, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// CandleStore persists candle buckets, upsert-keyed by
// (pair, interval, bucket start).
type CandleStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	UpsertCandle(ctx context.Context, c *models.Candle) error
	GetCandles(ctx context.Context, pair string, iv Interval, from, to time.Time, limit int) ([]models.Candle, error)
	Health(ctx context.Context) error
	Close() error
}

// AlertStore persists emitted alerts, best-effort.
type AlertStore interface {
	InsertAlert(ctx context.Context, a *models.Alert) error
}

// AlertPublisher pushes emitted alerts to an external transport
// (broker topic, notification fan-out). Must never block ingestion.
type AlertPublisher interface {
	Publish(ctx context.Context, a *models.Alert) error
	Close() error
}

// Metrics records engine observability counters and gauges.
type Metrics interface {
	RecordTickAccepted(pair string, priceType string)
	RecordTickRejected(pair string, reason string)
	RecordAlert(pair string, severity string)
	RecordLastPrice(pair string, price float64)
	RecordFlush(outcome string, seconds float64)
	RecordGauge(name string, value float64)
}
