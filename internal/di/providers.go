package di

import (
	"context"
	"fmt"
	"time"

	"FxPulse/internal/domain/repository"
	"FxPulse/internal/handler/api"
	mid "FxPulse/internal/middleware"
	internalrepo "FxPulse/internal/repository"
	"FxPulse/internal/service/cache"
	"FxPulse/internal/service/feed"
	"FxPulse/internal/usecase"
	pkgch "FxPulse/pkg/clickhouse"
	"FxPulse/pkg/config"
	pkgkafka "FxPulse/pkg/kafka"
	"FxPulse/pkg/logger"
	"FxPulse/pkg/metrics"
	"FxPulse/pkg/server"

	goredis "github.com/redis/go-redis/v9"
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient connects to ClickHouse and ensures the
// schema. Returns nil when persistence is disabled or the store is
// unreachable at startup, which flows down to a nil candle store and
// a disabled flusher while the in-memory engine keeps running.
func ProvideClickHouseClient(cfg *config.Config, log *logger.Logger) *pkgch.Client {
	if !cfg.Persistence.Enabled {
		return nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		log.Error("clickhouse unavailable, persistence disabled for this run", logger.Error(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		`CREATE TABLE IF NOT EXISTS ` + db + `.fx_candles (
			pair String,
			interval String,
			bucket_start DateTime64(3),
			open Float64,
			high Float64,
			low Float64,
			close Float64,
			volume Float64,
			version UInt64
		) ENGINE = ReplacingMergeTree(version)
		ORDER BY (pair, interval, bucket_start)`,
		`CREATE TABLE IF NOT EXISTS ` + db + `.fx_alerts (
			id String,
			pair String,
			window_minutes Int32,
			price_type String,
			from_price Float64,
			to_price Float64,
			change_percent Float64,
			severity String,
			triggered_at DateTime64(3)
		) ENGINE = MergeTree
		ORDER BY (pair, triggered_at)`,
	}); err != nil {
		_ = client.Close()
		log.Error("clickhouse schema init failed, persistence disabled for this run", logger.Error(err))
		return nil
	}
	return client
}

// ProvideCandleStore builds the candle store, nil when persistence is off.
func ProvideCandleStore(client *pkgch.Client, cfg *config.Config) repository.CandleStore {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHouseCandleStore(client.DB(), cfg.ClickHouse.Database+".fx_candles")
}

// ProvideAlertStore builds the alert store, nil when persistence is off.
func ProvideAlertStore(client *pkgch.Client, cfg *config.Config) repository.AlertStore {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHouseAlertStore(client.DB(), cfg.ClickHouse.Database+".fx_alerts")
}

// ProvideKafkaProducer builds the alert producer, nil when no brokers
// or no alerts topic are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.AlertsTopic == "" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher wraps the producer for the alerts topic.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AlertPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertsTopic)
}

// ProvideKafkaConsumer builds the tick consumer, nil when no brokers
// or no ticks topic are configured.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.TicksTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideEngineConfig maps YAML engine settings onto engine defaults.
func ProvideEngineConfig(cfg *config.Config) usecase.EngineConfig {
	ec := usecase.DefaultEngineConfig()
	if len(cfg.Engine.Thresholds) > 0 {
		ec.Thresholds = cfg.Engine.Thresholds
	}
	if len(cfg.Engine.SanityCaps) > 0 {
		ec.SanityCaps = cfg.Engine.SanityCaps
	}
	if len(cfg.Engine.HighSeverity) > 0 {
		ec.HighSeverity = cfg.Engine.HighSeverity
	}
	if cfg.Engine.ExtremeMultiplier > 0 {
		ec.ExtremeMultiplier = cfg.Engine.ExtremeMultiplier
	}
	if cfg.Engine.Cooldown > 0 {
		ec.Cooldown = cfg.Engine.Cooldown
	}
	if cfg.Engine.ReferenceTolerance > 0 {
		ec.ReferenceTolerance = cfg.Engine.ReferenceTolerance
	}
	if cfg.Engine.MaxTickReturn > 0 {
		ec.MaxTickReturn = cfg.Engine.MaxTickReturn
	}
	if cfg.Engine.ZScoreLimit > 0 {
		ec.ZScoreLimit = cfg.Engine.ZScoreLimit
	}
	if cfg.Engine.FlushInterval > 0 {
		ec.FlushInterval = cfg.Engine.FlushInterval
	}
	if cfg.Engine.FlushBackoff > 0 {
		ec.FlushBackoff = cfg.Engine.FlushBackoff
	}
	if cfg.Engine.LedgerRetention > 0 {
		ec.LedgerRetention = cfg.Engine.LedgerRetention
	}
	if cfg.Engine.AlertBuffer > 0 {
		ec.AlertBuffer = cfg.Engine.AlertBuffer
	}
	return ec
}

// ProvideAggregator creates the shared candle aggregator.
func ProvideAggregator() *usecase.CandleAggregator {
	return usecase.NewCandleAggregator()
}

// ProvideEngine assembles the market engine.
func ProvideEngine(
	ec usecase.EngineConfig,
	log *logger.Logger,
	m repository.Metrics,
	agg *usecase.CandleAggregator,
	alertStore repository.AlertStore,
	publisher repository.AlertPublisher,
) *usecase.MarketEngine {
	return usecase.NewMarketEngine(ec, log, m, agg, alertStore, publisher)
}

// ProvideFlusher creates the candle flusher. A nil store disables it.
func ProvideFlusher(
	agg *usecase.CandleAggregator,
	store repository.CandleStore,
	m repository.Metrics,
	log *logger.Logger,
	ec usecase.EngineConfig,
) *usecase.CandleFlusher {
	return usecase.NewCandleFlusher(agg, store, m, log, &ec)
}

// ProvideCandlesUseCase creates the candle read use case.
func ProvideCandlesUseCase(store repository.CandleStore, agg *usecase.CandleAggregator) *usecase.CandlesUseCase {
	return usecase.NewCandlesUseCase(store, agg)
}

// ProvideFeedStream builds the websocket feed, nil when no URL is set.
func ProvideFeedStream(cfg *config.Config, log *logger.Logger) repository.MarketStream {
	if cfg.Feed.URL == "" {
		return nil
	}
	return feed.New(
		cfg.Feed.APIKey,
		cfg.Feed.URL,
		cfg.Feed.Pairs,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
		log,
	)
}

// ProvideCollector wires the feed into the engine through the ingest
// pipeline. Nil when there is no feed configured.
func ProvideCollector(
	stream repository.MarketStream,
	engine *usecase.MarketEngine,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.TickCollector {
	if stream == nil {
		return nil
	}
	pipe := mid.NewIngestPipeline(engine, m, log,
		mid.WithMaxRate(50),
		mid.WithBufferSize(2048),
	)
	return usecase.NewTickCollector(stream, pipe, log)
}

// ProvideTicksHandler registers the engine as the ticks topic consumer.
func ProvideTicksHandler(engine *usecase.MarketEngine, cfg *config.Config) *usecase.KafkaTicksHandler {
	if cfg.Kafka.TicksTopic == "" {
		return nil
	}
	return usecase.NewKafkaTicksHandler(cfg.Kafka.TicksTopic, engine)
}

// ProvideBytesCache selects Redis when configured, in-process otherwise.
func ProvideBytesCache(cfg *config.Config) cache.BytesCache {
	if cfg.Redis.Enabled && cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return cache.NewRedisCache(client)
	}
	return cache.NewTTLCache()
}

// ProvideApp assembles the application server.
func ProvideApp(
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
) *server.App {
	return server.New(cfg, log, engine, flusher, collector, consumer, ticksKH, producer, chClient, handler)
}

// ProvideMarketHandler creates the HTTP read surface.
func ProvideMarketHandler(
	log *logger.Logger,
	engine *usecase.MarketEngine,
	candles *usecase.CandlesUseCase,
	flusher *usecase.CandleFlusher,
	store repository.CandleStore,
	c cache.BytesCache,
	collector *usecase.TickCollector,
) *api.MarketEchoHandler {
	h := api.NewMarketEchoHandler(log, engine, candles, flusher, store, c)
	if collector != nil {
		h.SetFeedStatus(collector.IsConnected)
	}
	return h
}
