package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
	"github.com/kirillkom/weekly-issue/internal/core/ports"
)

const projectionCategory = "issue"

type CollectIssuesUseCase struct {
	pipeline  ports.PipelineRunner
	repo      ports.IssueRepository
	publisher ports.ProjectionPublisher
	registry  ports.CompanyRegistry
	logger    *slog.Logger
	now       func() time.Time
}

func NewCollectIssuesUseCase(
	pipeline ports.PipelineRunner,
	repo ports.IssueRepository,
	publisher ports.ProjectionPublisher,
	registry ports.CompanyRegistry,
	logger *slog.Logger,
) *CollectIssuesUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectIssuesUseCase{
		pipeline:  pipeline,
		repo:      repo,
		publisher: publisher,
		registry:  registry,
		logger:    logger.With("component", "collect_issues"),
		now:       time.Now,
	}
}

func (uc *CollectIssuesUseCase) Collect(ctx context.Context, req domain.CollectRequest) (domain.CollectReport, error) {
	week := strings.TrimSpace(req.Week)
	if week == "" {
		week = domain.ISOWeek(uc.now())
	} else if _, err := domain.ParseISOWeek(week); err != nil {
		return domain.CollectReport{}, err
	}

	uc.logger.Info("collect_started", "week", week, "requested_companies", len(req.Companies))
	run := uc.pipeline.Run(ctx, req.Companies)
	report := domain.CollectReport{Run: run, Week: week}
	if !run.Succeeded() {
		return report, domain.WrapError(domain.ErrUpstream, "collect issues", errors.New(run.Message))
	}

	results := withSummary(run.Results)
	if len(results) == 0 {
		uc.logger.Info("collect_finished", "week", week, "stored", 0, "projected", 0)
		return report, nil
	}

	if uc.repo != nil {
		stored, err := uc.repo.BulkCreate(ctx, results)
		if err != nil {
			uc.logger.Error("issue_store_failed", "week", week, "error", err)
			report.StoreError = err.Error()
		} else {
			report.Stored = stored
		}
	}

	if uc.publisher != nil {
		batch := uc.projection(week, results)
		if err := uc.publisher.PublishProjection(ctx, batch); err != nil {
			uc.logger.Error("issue_projection_failed", "week", week, "items", len(batch.Items), "error", err)
			report.ProjectionError = err.Error()
		} else {
			report.Projected = len(batch.Items)
		}
	}

	uc.logger.Info("collect_finished", "week", week, "stored", report.Stored, "projected", report.Projected)
	return report, nil
}

func (uc *CollectIssuesUseCase) projection(week string, results []domain.SummaryResult) domain.ProjectionBatch {
	items := make([]domain.ProjectionItem, 0, len(results))
	for _, result := range results {
		var stockCode string
		if uc.registry != nil {
			stockCode, _ = uc.registry.StockCode(result.Company)
		}
		items = append(items, domain.ProjectionItem{
			CompanyName: result.Company,
			StockCode:   stockCode,
			Content:     result.Summary,
			Metadata: domain.ProjectionMetadata{
				OriginalTitle:   result.OriginalTitle,
				Confidence:      result.Confidence,
				MatchedKeywords: append([]string(nil), result.MatchedKeywords...),
				NewsURL:         result.NewsURL,
				PublishedDate:   result.PublishedDate,
				Category:        result.Category,
				Sentiment:       result.Sentiment,
				Source:          domain.ProjectionSource,
			},
		})
	}
	return domain.ProjectionBatch{
		Category: projectionCategory,
		Week:     week,
		Items:    items,
	}
}

func withSummary(results []domain.SummaryResult) []domain.SummaryResult {
	out := make([]domain.SummaryResult, 0, len(results))
	for _, result := range results {
		if strings.TrimSpace(result.Summary) == "" {
			continue
		}
		out = append(out, result)
	}
	return out
}
