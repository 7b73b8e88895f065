package ports

import (
	"context"
	"io"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

// PipelineRunner is the inbound contract for one news pipeline run.
// It never returns an error; failures are reported through the run status.
type PipelineRunner interface {
	Run(ctx context.Context, companies []string) domain.PipelineRun
}

type IssueCollector interface {
	Collect(ctx context.Context, req domain.CollectRequest) (domain.CollectReport, error)
}

type IssueReader interface {
	Search(ctx context.Context, filter domain.IssueFilter) (domain.IssuePage, error)
	Recent(ctx context.Context, days int) ([]domain.Issue, error)
	HighConfidence(ctx context.Context, minConfidence float64, limit int) ([]domain.Issue, error)
}

type WeeklyReporter interface {
	Build(ctx context.Context, week string) (io.Reader, error)
	Archive(ctx context.Context, week string) (string, error)
}

type CollectTrigger interface {
	PublishCollectRequest(ctx context.Context, req domain.CollectRequest) error
}
