package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/certextract/internal/bootstrap"
	"github.com/kirillkom/certextract/internal/config"
	"github.com/kirillkom/certextract/internal/observability/logging"
)

const serviceName = "certextract-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.New(serviceName, cfg.LogLevel, cfg.AppEnv)
	if !cfg.PersistenceEnabled {
		logger.Error("worker_requires_persistence", "hint", "set PERSISTENCE_ENABLED=true")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, serviceName, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           app.Metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	timeout := cfg.DocumentTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		if doc, err := app.Repo.GetByID(handlerCtx, documentID); err == nil {
			app.PipelineMetrics.ObserveQueueLag(time.Since(doc.CreatedAt))
		}

		processCtx, cancel := context.WithTimeout(handlerCtx, timeout)
		defer cancel()

		started := time.Now()
		err := app.ProcessUC.ProcessByID(processCtx, documentID)
		logger.Info("document_processed",
			"document_id", documentID,
			"duration_ms", time.Since(started).Milliseconds(),
			"ok", err == nil,
		)
		return err
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
