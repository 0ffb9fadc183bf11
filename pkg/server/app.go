package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
	"github.com/pral10/SmartIoT/internal/health"
	"github.com/pral10/SmartIoT/internal/usecase"
	pkgch "github.com/pral10/SmartIoT/pkg/clickhouse"
	"github.com/pral10/SmartIoT/pkg/config"
	xhttp "github.com/pral10/SmartIoT/pkg/http"
	pkgkafka "github.com/pral10/SmartIoT/pkg/kafka"
	applogger "github.com/pral10/SmartIoT/pkg/logger"
	pkgqueue "github.com/pral10/SmartIoT/pkg/queue"
)

// HealthPublisher pushes device health snapshots to an external sink.
// The Firebase store implements it; other backends serve health via the API only.
type HealthPublisher interface {
	PublishHealth(ctx context.Context, h models.DeviceHealth) error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	collector   *usecase.ReadingCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	alertQueue  *pkgqueue.RedisQueue
	registry    *health.Registry
	healthPub   HealthPublisher
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler

	// ReadingProc is attached by DI so its publisher/store close with the app.
	ReadingProc *usecase.ReadingProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.ReadingCollector,
	registry *health.Registry,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		collector: collector,
		registry:  registry,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetConsumer wires the Kafka consumer used when the backend is kafka.
func (a *App) SetConsumer(c *pkgkafka.Consumer, kh pkgkafka.MessageHandler) {
	a.consumer = c
	a.kh = kh
}

// SetClickHouse keeps the client so it is closed on shutdown.
func (a *App) SetClickHouse(c *pkgch.Client) { a.chClient = c }

// SetAlertQueue wires the Redis alert queue.
func (a *App) SetAlertQueue(q *pkgqueue.RedisQueue) { a.alertQueue = q }

// SetHealthPublisher wires the external health sink.
func (a *App) SetHealthPublisher(p HealthPublisher) { a.healthPub = p }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	// Start alert queue workers before anything can raise alerts
	if a.alertQueue != nil {
		if err := a.alertQueue.Start(); err != nil {
			a.log.Error("alert queue start error", applogger.Error(err))
		}
	}

	// Start collector (stream + pipeline)
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Error("collector error", applogger.Error(err))
		}
	}()
	a.log.Info("collector started", applogger.String("source", a.cfg.Source.Type))

	// Start consumer if the kafka backend is active
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Periodic health publishing
	go a.healthLoop(ctx)

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// healthLoop publishes device health snapshots on a fixed interval.
func (a *App) healthLoop(ctx context.Context) {
	interval := a.cfg.Health.UpdateInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, snap := range a.registry.Snapshots() {
				a.log.Debug("device health",
					applogger.String("device", snap.DeviceID),
					applogger.String("status", snap.Status),
					applogger.Float64("reliability", snap.ReliabilityPercent))
				if a.healthPub != nil {
					if err := a.healthPub.PublishHealth(ctx, snap); err != nil {
						a.log.Warn("health publish error", applogger.Error(err))
					}
				}
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		a.log.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Stop alert queue workers
	if a.alertQueue != nil {
		if err := a.alertQueue.Stop(shutdownCtx); err != nil {
			a.log.Warn("alert queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close reading processor resources (publisher/storage)
	if a.ReadingProc != nil {
		a.ReadingProc.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
