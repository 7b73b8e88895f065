package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/weekly-issue/internal/bootstrap"
	"github.com/kirillkom/weekly-issue/internal/config"
	"github.com/kirillkom/weekly-issue/internal/core/domain"
	"github.com/kirillkom/weekly-issue/internal/observability/logging"
	"github.com/kirillkom/weekly-issue/internal/observability/metrics"
)

const service = "worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(service)
	app, err := bootstrap.New(ctx, cfg, service, logger, workerMetrics.Registry())
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
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

	logger.Info("worker_subscribed", "subject", cfg.NATSCollectSubject)
	err = app.Queue.SubscribeCollectRequests(ctx, func(handlerCtx context.Context, req domain.CollectRequest) error {
		collectCtx, cancel := context.WithTimeout(handlerCtx, cfg.CollectTimeout)
		defer cancel()

		workerMetrics.StartCollect()
		start := time.Now()
		report, err := app.CollectUC.Collect(collectCtx, req)
		workerMetrics.FinishCollect(service, time.Since(start), err)
		if err != nil {
			return err
		}
		logger.Info("collect_finished",
			"week", report.Week,
			"summaries", report.Run.Stats.FinalSummaries,
			"stored", report.Stored,
			"projected", report.Projected,
		)

		key, err := app.ReportUC.Archive(collectCtx, report.Week)
		workerMetrics.ObserveArchive(service, err)
		if err != nil {
			return err
		}
		logger.Info("report_archived", "week", report.Week, "key", key)
		return nil
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
