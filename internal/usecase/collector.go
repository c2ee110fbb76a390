package usecase

import (
	"context"

	"FxPulse/internal/domain/models"
	drepo "FxPulse/internal/domain/repository"
	mid "FxPulse/internal/middleware"
	"FxPulse/pkg/logger"
)

// TickCollector drives the websocket feed. It reads trade and quote
// channels, pushes updates through the ingest pipeline, and reconnects
// whenever the stream errors out.
type TickCollector struct {
	stream drepo.MarketStream
	pipe   *mid.IngestPipeline
	log    *logger.Logger
}

func NewTickCollector(stream drepo.MarketStream, pipe *mid.IngestPipeline, log *logger.Logger) *TickCollector {
	return &TickCollector{stream: stream, pipe: pipe, log: log}
}

func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes, and launches the consume loop.
func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	c.pipe.Start(ctx)
	go c.run(ctx)
	return nil
}

// run consumes the stream until ctx is done. The stream closes its
// channels after a read error, so each session gets fresh channels
// from Read and a reconnect attempt on failure.
func (c *TickCollector) run(ctx context.Context) {
	for {
		trades, quotes, errs := c.stream.Read(ctx)
		c.consume(ctx, trades, quotes, errs)
		select {
		case <-ctx.Done():
			return
		default:
		}
		c.log.Warn("feed stream ended, reconnecting")
		if err := c.stream.Reconnect(ctx); err != nil {
			c.log.Error("feed reconnect failed", logger.Error(err))
			select {
			case <-ctx.Done():
				return
			default:
			}
			continue
		}
	}
}

func (c *TickCollector) consume(
	ctx context.Context,
	trades <-chan *models.TradeUpdate,
	quotes <-chan *models.QuoteUpdate,
	errs <-chan error,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			if err != nil {
				c.log.Warn("feed stream error", logger.Error(err))
				return
			}
		case t, ok := <-trades:
			if !ok {
				return
			}
			c.pipe.OfferTrade(t)
		case q, ok := <-quotes:
			if !ok {
				return
			}
			c.pipe.OfferQuote(q)
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	c.pipe.Stop()
	return c.stream.Close()
}
