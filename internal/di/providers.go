package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pral10/SmartIoT/internal/alerts"
	"github.com/pral10/SmartIoT/internal/domain/repository"
	"github.com/pral10/SmartIoT/internal/forecast"
	"github.com/pral10/SmartIoT/internal/handler/api"
	"github.com/pral10/SmartIoT/internal/health"
	mid "github.com/pral10/SmartIoT/internal/middleware"
	internalrepo "github.com/pral10/SmartIoT/internal/repository"
	svccache "github.com/pral10/SmartIoT/internal/service/cache"
	"github.com/pral10/SmartIoT/internal/service/gateway"
	"github.com/pral10/SmartIoT/internal/simulator"
	"github.com/pral10/SmartIoT/internal/usecase"
	pkgcache "github.com/pral10/SmartIoT/pkg/cache"
	pkgch "github.com/pral10/SmartIoT/pkg/clickhouse"
	"github.com/pral10/SmartIoT/pkg/config"
	xhttp "github.com/pral10/SmartIoT/pkg/http"
	pkgkafka "github.com/pral10/SmartIoT/pkg/kafka"
	applogger "github.com/pral10/SmartIoT/pkg/logger"
	"github.com/pral10/SmartIoT/pkg/metrics"
	pkgqueue "github.com/pral10/SmartIoT/pkg/queue"
	"github.com/pral10/SmartIoT/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	return applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEngine creates the forecast engine with time-seeded randomness.
func ProvideEngine() *forecast.Engine {
	return forecast.NewEngine(nil)
}

// ProvideEvaluator creates the latching alert evaluator.
func ProvideEvaluator() *alerts.Evaluator {
	return alerts.NewEvaluator()
}

// ProvideRegistry creates the device health registry.
func ProvideRegistry() *health.Registry {
	return health.NewRegistry(nil)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// firebase backend is active and ClickHouse is not needed.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Backend.Type == "firebase" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideRedisClient creates the shared Redis client, or nil when disabled.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return cli, nil
}

// ProvideThresholdCache backs threshold persistence with Redis when enabled,
// in-process memory otherwise.
func ProvideThresholdCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, err
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideBytesCache backs the annotated history response cache.
func ProvideBytesCache(rdb *redis.Client) svccache.BytesCache {
	if rdb != nil {
		return svccache.NewRedisBytesCache(rdb)
	}
	return svccache.NewTTLCache()
}

// ProvideReadingStore selects the storage backend. Kafka routing still
// persists through ClickHouse on the consumer side.
func ProvideReadingStore(chClient *pkgch.Client, cfg *config.Config) (repository.ReadingStore, error) {
	if cfg.Backend.Type == "firebase" {
		client := xhttp.NewClient(xhttp.WithTimeout(cfg.Firebase.Timeout))
		return internalrepo.NewFirebaseReadingStore(client, cfg.Firebase.URL, cfg.Firebase.MaxRetries, cfg.Firebase.RetryDelay), nil
	}

	store := internalrepo.NewClickHouseReadingStore(chClient, cfg.ClickHouse.Database)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer when the kafka backend is on.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the readings publisher when the kafka backend is on.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaReadingsHandler registers the handler for the readings topic.
func ProvideKafkaReadingsHandler(store repository.ReadingStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaReadingsHandler {
	return usecase.NewKafkaReadingsHandler(cfg.Kafka.Topic, store, m)
}

// ProvideAlertQueue creates the Redis alert queue with the persist job
// registered, or nil when Redis is disabled.
func ProvideAlertQueue(log *applogger.Logger, rdb *redis.Client, store repository.ReadingStore, m repository.Metrics) *pkgqueue.RedisQueue {
	if rdb == nil {
		return nil
	}
	q := pkgqueue.NewRedisQueue(log, &pkgqueue.QueueConfig{
		Workers:    2,
		RetryLimit: 3,
		RetryDelay: 5 * time.Second,
	}, rdb, pkgqueue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewAlertPersistJob(store, m))
	return q
}

// ProvideQueueService exposes the queue for publishing, avoiding a typed nil.
func ProvideQueueService(q *pkgqueue.RedisQueue) pkgqueue.QueueService {
	if q == nil {
		return nil
	}
	return q
}

// ProvideThresholdService creates the cache-backed threshold service.
func ProvideThresholdService(c pkgcache.Service, cfg *config.Config, ev *alerts.Evaluator) *usecase.ThresholdService {
	return usecase.NewThresholdService(c, cfg.Redis.CacheTTL.Thresholds, ev)
}

// ProvideSensorStream selects the configured sensor source.
func ProvideSensorStream(cfg *config.Config, log *applogger.Logger) repository.SensorStream {
	if cfg.Source.Type == "gateway" {
		return gateway.New(
			cfg.Gateway.APIKey,
			cfg.Gateway.WebSocketURL,
			cfg.Gateway.DeviceIDs,
			cfg.Gateway.ReconnectDelay,
			cfg.Gateway.PingInterval,
			log,
		)
	}
	return simulator.New(
		cfg.Simulator.DeviceID,
		cfg.Simulator.DeviceName,
		cfg.Simulator.SampleInterval,
		cfg.Simulator.Seed,
	)
}

// ProvideReadingProcessor creates the backend router use case.
func ProvideReadingProcessor(
	pub repository.Publisher,
	store repository.ReadingStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.ReadingProcessor {
	return usecase.NewReadingProcessor(
		pub,
		store,
		m,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideReadingEnricher creates the forecast/alert/health enrichment step.
func ProvideReadingEnricher(
	store repository.ReadingStore,
	engine *forecast.Engine,
	ev *alerts.Evaluator,
	thresholds *usecase.ThresholdService,
	registry *health.Registry,
	qs pkgqueue.QueueService,
	m repository.Metrics,
	proc *usecase.ReadingProcessor,
	cfg *config.Config,
) *usecase.ReadingEnricher {
	return usecase.NewReadingEnricher(
		store, engine, ev, thresholds, registry, qs, m, proc,
		repository.NormalizeMethod(cfg.Forecast.Method),
		cfg.Forecast.HorizonMinutes,
		cfg.Forecast.HistoryDepth,
	)
}

// ProvideReadingCollector creates the stream consumption loop with the
// ingest pipeline between source and enrichment.
func ProvideReadingCollector(
	stream repository.SensorStream,
	enricher *usecase.ReadingEnricher,
	proc *usecase.ReadingProcessor,
	m repository.Metrics,
) *usecase.ReadingCollector {
	pipe := mid.NewIngestPipeline(enricher, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewReadingCollector(stream, proc, m, pipe)
}

// ProvideQueryService creates the read-side service for the API.
func ProvideQueryService(
	store repository.ReadingStore,
	engine *forecast.Engine,
	bytes svccache.BytesCache,
	cfg *config.Config,
	m repository.Metrics,
) *usecase.QueryService {
	return usecase.NewQueryService(store, engine, bytes,
		cfg.Redis.CacheTTL.History, cfg.Forecast.HistoryDepth, m)
}

// ProvideDashboardHandler creates the Echo handler.
func ProvideDashboardHandler(
	log *applogger.Logger,
	queries *usecase.QueryService,
	thresholds *usecase.ThresholdService,
	registry *health.Registry,
	store repository.ReadingStore,
	collector *usecase.ReadingCollector,
) *api.DashboardHandler {
	return api.NewDashboardHandler(log, queries, thresholds, registry, store, collector.IsConnected)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.ReadingCollector,
	registry *health.Registry,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaReadingsHandler,
	chClient *pkgch.Client,
	q *pkgqueue.RedisQueue,
	store repository.ReadingStore,
	handler *api.DashboardHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}

	app := server.New(cfg, log, collector, registry)
	app.SetHTTPHandler(handler)
	app.SetClickHouse(chClient)
	app.SetAlertQueue(q)
	if consumer != nil {
		app.SetConsumer(consumer, kh)
	}
	if pub, ok := store.(server.HealthPublisher); ok {
		app.SetHealthPublisher(pub)
	}
	app.ReadingProc = collector.Processor()
	return app
}
