package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/weekly-issue/internal/config"
	"github.com/kirillkom/weekly-issue/internal/core/ports"
	"github.com/kirillkom/weekly-issue/internal/core/usecase"
	"github.com/kirillkom/weekly-issue/internal/infrastructure/companies"
	"github.com/kirillkom/weekly-issue/internal/infrastructure/inference"
	"github.com/kirillkom/weekly-issue/internal/infrastructure/naver"
	"github.com/kirillkom/weekly-issue/internal/infrastructure/queue/nats"
	"github.com/kirillkom/weekly-issue/internal/infrastructure/report"
	"github.com/kirillkom/weekly-issue/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/weekly-issue/internal/infrastructure/resilience"
	"github.com/kirillkom/weekly-issue/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/weekly-issue/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue *nats.Queue

	Pipeline  ports.PipelineRunner
	CollectUC ports.IssueCollector
	QueryUC   ports.IssueReader
	ReportUC  ports.WeeklyReporter

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string, logger *slog.Logger, registerer prometheus.Registerer) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	pipelineMetrics := metrics.NewPipelineMetrics(service, registerer)

	registry, err := loadRegistry(cfg.CompaniesFile)
	if err != nil {
		return nil, fmt.Errorf("load company registry: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewIssueRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.ReportStoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init report storage: %w", err)
	}

	var executor *resilience.Executor
	if cfg.ResilienceEnabled {
		executor = resilience.NewExecutor(
			resilience.DefaultConfig(),
			resilience.WithLogger(logger.With("component", "resilience")),
			resilience.WithStateObserver(pipelineMetrics.ObserveBreakerState),
		)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, nats.Subjects{
		Collect:    cfg.NATSCollectSubject,
		Projection: cfg.NATSProjectionSubject,
	}, nats.Options{
		ResilienceExecutor: executor,
		Logger:             logger.With("component", "nats"),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	source := naver.New(naver.Options{
		Endpoint:      cfg.NaverSearchURL,
		ClientID:      cfg.NaverClientID,
		ClientSecret:  cfg.NaverClientSecret,
		Timeout:       cfg.NaverTimeout,
		RatePerSecond: cfg.NaverRatePerSecond,
		Logger:        logger.With("component", "naver"),
	})
	classifier := inference.NewClassifier(cfg.ClassifierURL, inference.ClassifierOptions{
		Timeout:   cfg.ClassifierTimeout,
		Threshold: cfg.ClassifierThreshold,
		Executor:  executor,
		Logger:    logger.With("component", "classifier"),
	})
	summarizer := inference.NewSummarizer(cfg.SummarizerURL, inference.SummarizerOptions{
		Timeout:  cfg.SummarizerTimeout,
		Executor: executor,
		Logger:   logger.With("component", "summarizer"),
	})

	pipeline := usecase.NewPipeline(
		source,
		usecase.NewKeywordFilter(nil),
		classifier,
		summarizer,
		registry,
		usecase.PipelineConfig{
			NewsPerCompany:      cfg.NewsPerCompany,
			SimilarityThreshold: cfg.DedupThreshold,
		},
		usecase.WithRunObserver(pipelineMetrics),
		usecase.WithPipelineLogger(logger.With("component", "pipeline")),
	)

	return &App{
		Config: cfg,
		Logger: logger,
		Queue:  queue,

		Pipeline:  pipeline,
		CollectUC: usecase.NewCollectIssuesUseCase(pipeline, repo, queue, registry, logger),
		QueryUC:   usecase.NewIssueQueryUseCase(repo),
		ReportUC:  usecase.NewReportUseCase(repo, report.NewXLSXRenderer(), storage),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func loadRegistry(path string) (*companies.Registry, error) {
	if path == "" {
		return companies.Default(), nil
	}
	return companies.Load(path)
}
