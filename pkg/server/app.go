package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FxPulse/internal/handler/api"
	"FxPulse/internal/usecase"
	pkgch "FxPulse/pkg/clickhouse"
	"FxPulse/pkg/config"
	xhttp "FxPulse/pkg/http"
	pkgkafka "FxPulse/pkg/kafka"
	"FxPulse/pkg/logger"
)

// App owns the full application lifecycle: engine, flusher, feed
// collector, kafka consumer, and the HTTP read surface.
type App struct {
	cfg       *config.Config
	log       *logger.Logger
	engine    *usecase.MarketEngine
	flusher   *usecase.CandleFlusher
	collector *usecase.TickCollector
	consumer  *pkgkafka.Consumer
	ticksKH   *usecase.KafkaTicksHandler
	producer  *pkgkafka.Producer
	chClient  *pkgch.Client
	handler   *api.MarketEchoHandler

	httpServer *xhttp.Server
}

func New(
	cfg *config.Config,
	log *logger.Logger,
	engine *usecase.MarketEngine,
	flusher *usecase.CandleFlusher,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	ticksKH *usecase.KafkaTicksHandler,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	handler *api.MarketEchoHandler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		engine:    engine,
		flusher:   flusher,
		collector: collector,
		consumer:  consumer,
		ticksKH:   ticksKH,
		producer:  producer,
		chClient:  chClient,
		handler:   handler,
	}
}

// Run starts every component and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.engine.Start(ctx)
	a.flusher.Start(ctx)

	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Error("feed collector start", logger.Error(err))
			return err
		}
		a.log.Info("feed collector started", logger.Strings("pairs", a.cfg.Feed.Pairs))
	}

	if a.consumer != nil && a.ticksKH != nil {
		a.consumer.RegisterHandler(a.ticksKH)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", logger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", logger.String("topic", a.ticksKH.Topic()))
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start", logger.Error(err))
		return err
	}
	a.log.Info("http server started", logger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown drains components in dependency order: stop intake first,
// then the engine, then flush whatever candles remain.
func (a *App) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.log.Warn("collector stop", logger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Warn("http shutdown", logger.Error(err))
		}
	}

	a.engine.Stop()
	a.flusher.Stop()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close", logger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close", logger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
