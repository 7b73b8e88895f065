package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
	"github.com/kirillkom/weekly-issue/internal/core/ports"
)

const (
	DefaultRecentDays            = 7
	MaxRecentDays                = 90
	DefaultHighConfidenceMinimum = 0.8
)

type IssueQueryUseCase struct {
	repo ports.IssueRepository
	now  func() time.Time
}

func NewIssueQueryUseCase(repo ports.IssueRepository) *IssueQueryUseCase {
	return &IssueQueryUseCase{repo: repo, now: time.Now}
}

func (uc *IssueQueryUseCase) Search(ctx context.Context, filter domain.IssueFilter) (domain.IssuePage, error) {
	filter = filter.Normalized()
	if filter.Page > domain.MaxPage {
		return domain.IssuePage{}, domain.WrapError(domain.ErrInvalidInput, "search issues", fmt.Errorf("page must be <= %d", domain.MaxPage))
	}
	if filter.MinConfidence < 0 || filter.MinConfidence > 1 {
		return domain.IssuePage{}, domain.WrapError(domain.ErrInvalidInput, "search issues", fmt.Errorf("min_confidence %v out of [0,1]", filter.MinConfidence))
	}

	issues, total, err := uc.repo.Search(ctx, filter)
	if err != nil {
		return domain.IssuePage{}, fmt.Errorf("search issues: %w", err)
	}
	if issues == nil {
		issues = []domain.Issue{}
	}
	return domain.IssuePage{
		Issues:   issues,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (uc *IssueQueryUseCase) Recent(ctx context.Context, days int) ([]domain.Issue, error) {
	if days <= 0 {
		days = DefaultRecentDays
	}
	if days > MaxRecentDays {
		return nil, domain.WrapError(domain.ErrInvalidInput, "recent issues", fmt.Errorf("days must be <= %d", MaxRecentDays))
	}

	page, err := uc.Search(ctx, domain.IssueFilter{
		CreatedFrom: uc.now().AddDate(0, 0, -days),
		PageSize:    domain.MaxPageSize,
	})
	if err != nil {
		return nil, err
	}
	return page.Issues, nil
}

func (uc *IssueQueryUseCase) HighConfidence(ctx context.Context, minConfidence float64, limit int) ([]domain.Issue, error) {
	if minConfidence <= 0 {
		minConfidence = DefaultHighConfidenceMinimum
	}
	page, err := uc.Search(ctx, domain.IssueFilter{
		MinConfidence:     minConfidence,
		PageSize:          limit,
		OrderByConfidence: true,
	})
	if err != nil {
		return nil, err
	}
	return page.Issues, nil
}
