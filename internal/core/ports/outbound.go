package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

type NewsSource interface {
	FetchCompanyNews(ctx context.Context, company string, count int) []domain.RawNewsItem
}

type NewsClassifier interface {
	Classify(ctx context.Context, items []domain.FilteredItem) []domain.ClassifiedItem
}

// NewsSummarizer produces exactly one result per input item, in order.
type NewsSummarizer interface {
	Summarize(ctx context.Context, items []domain.ClassifiedItem) []domain.SummaryResult
}

type CompanyRegistry interface {
	Names() []string
	StockCode(name string) (string, bool)
}

type IssueRepository interface {
	BulkCreate(ctx context.Context, results []domain.SummaryResult) (int, error)
	Search(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, int, error)
}

type ProjectionPublisher interface {
	PublishProjection(ctx context.Context, batch domain.ProjectionBatch) error
}

type ReportRenderer interface {
	Render(week string, issues []domain.Issue) (io.Reader, error)
}

type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// RunObserver receives the outcome of every pipeline run.
type RunObserver interface {
	ObserveRun(run domain.PipelineRun, duration time.Duration)
}
