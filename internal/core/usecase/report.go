package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
	"github.com/kirillkom/weekly-issue/internal/core/ports"
)

const maxReportPages = 50

type ReportUseCase struct {
	repo     ports.IssueRepository
	renderer ports.ReportRenderer
	storage  ports.ObjectStorage
	now      func() time.Time
}

func NewReportUseCase(repo ports.IssueRepository, renderer ports.ReportRenderer, storage ports.ObjectStorage) *ReportUseCase {
	return &ReportUseCase{
		repo:     repo,
		renderer: renderer,
		storage:  storage,
		now:      time.Now,
	}
}

func ReportKey(week string) string {
	return "weekly-issues-" + week + ".xlsx"
}

// Build renders issues created during week; empty means the current week.
func (uc *ReportUseCase) Build(ctx context.Context, week string) (io.Reader, error) {
	week, start, err := uc.resolveWeek(week)
	if err != nil {
		return nil, err
	}
	issues, err := uc.loadWeek(ctx, start)
	if err != nil {
		return nil, err
	}
	reader, err := uc.renderer.Render(week, issues)
	if err != nil {
		return nil, fmt.Errorf("render weekly report: %w", err)
	}
	return reader, nil
}

func (uc *ReportUseCase) Archive(ctx context.Context, week string) (string, error) {
	week, _, err := uc.resolveWeek(week)
	if err != nil {
		return "", err
	}
	reader, err := uc.Build(ctx, week)
	if err != nil {
		return "", err
	}
	key := ReportKey(week)
	if err := uc.storage.Save(ctx, key, reader); err != nil {
		return "", fmt.Errorf("archive weekly report: %w", err)
	}
	return key, nil
}

func (uc *ReportUseCase) resolveWeek(week string) (string, time.Time, error) {
	week = strings.TrimSpace(week)
	if week == "" {
		week = domain.ISOWeek(uc.now())
	}
	start, err := domain.ParseISOWeek(week)
	if err != nil {
		return "", time.Time{}, err
	}
	return week, start, nil
}

func (uc *ReportUseCase) loadWeek(ctx context.Context, start time.Time) ([]domain.Issue, error) {
	filter := domain.IssueFilter{
		CreatedFrom: start,
		CreatedTo:   start.AddDate(0, 0, 7),
		PageSize:    domain.MaxPageSize,
	}

	var out []domain.Issue
	for page := 1; page <= maxReportPages; page++ {
		filter.Page = page
		issues, total, err := uc.repo.Search(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("load weekly issues: %w", err)
		}
		out = append(out, issues...)
		if len(issues) == 0 || len(out) >= total {
			break
		}
	}
	return out, nil
}
