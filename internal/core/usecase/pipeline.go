package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
	"github.com/kirillkom/weekly-issue/internal/core/ports"
)

const DefaultNewsPerCompany = 100

type PipelineConfig struct {
	NewsPerCompany      int
	SimilarityThreshold int
}

type PipelineOption func(*Pipeline)

func WithRunObserver(observer ports.RunObserver) PipelineOption {
	return func(p *Pipeline) {
		p.observer = observer
	}
}

func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Pipeline runs collect, filter, dedup, classify and summarize in order,
// stopping early when a stage leaves nothing to process.
type Pipeline struct {
	source     ports.NewsSource
	filter     *KeywordFilter
	classifier ports.NewsClassifier
	summarizer ports.NewsSummarizer
	registry   ports.CompanyRegistry
	observer   ports.RunObserver
	logger     *slog.Logger
	cfg        PipelineConfig
}

func NewPipeline(
	source ports.NewsSource,
	filter *KeywordFilter,
	classifier ports.NewsClassifier,
	summarizer ports.NewsSummarizer,
	registry ports.CompanyRegistry,
	cfg PipelineConfig,
	opts ...PipelineOption,
) *Pipeline {
	if filter == nil {
		filter = NewKeywordFilter(nil)
	}
	if cfg.NewsPerCompany <= 0 {
		cfg.NewsPerCompany = DefaultNewsPerCompany
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	p := &Pipeline{
		source:     source,
		filter:     filter,
		classifier: classifier,
		summarizer: summarizer,
		registry:   registry,
		logger:     slog.Default(),
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "pipeline")
	return p
}

func (p *Pipeline) Run(ctx context.Context, companies []string) (run domain.PipelineRun) {
	started := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("pipeline_panic", "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
			run = errorRun(fmt.Errorf("unexpected failure: %v", rec))
		}
		p.logger.Info("pipeline_finished",
			"status", run.Status,
			"stage", run.FinalStage(),
			"total_collected", run.Stats.TotalCollected,
			"final_summaries", run.Stats.FinalSummaries,
			"duration_ms", float64(time.Since(started).Microseconds())/1000.0,
		)
		if p.observer != nil {
			p.observer.ObserveRun(run, time.Since(started))
		}
	}()

	targets, err := p.targets(companies)
	if err != nil {
		return errorRun(err)
	}
	stats := domain.PipelineRunStats{Companies: targets}

	collected := p.collect(ctx, targets)
	stats.TotalCollected = len(collected)
	if len(collected) == 0 {
		return p.stopEarly(domain.StageCollecting, stats, "no news collected")
	}

	filtered := p.filter.Filter(collected)
	stats.AfterKeywordFilter = len(filtered)
	if len(filtered) == 0 {
		return p.stopEarly(domain.StageFiltering, stats, "no news matched the keyword lexicon")
	}

	deduped := Deduplicate(filtered, p.cfg.SimilarityThreshold)
	stats.AfterDeduplication = len(deduped)
	if len(deduped) == 0 {
		return p.stopEarly(domain.StageDeduplicating, stats, "no news left after deduplication")
	}

	classified := p.classifier.Classify(ctx, deduped)
	stats.AfterClassification = len(classified)
	if len(classified) == 0 {
		return p.stopEarly(domain.StageClassifying, stats, "no news classified as important")
	}

	results := p.summarizer.Summarize(ctx, classified)
	if len(results) != len(classified) {
		return errorRun(fmt.Errorf("summarizer returned %d results for %d items", len(results), len(classified)))
	}
	stats.FinalSummaries = len(results)

	return domain.PipelineRun{
		Status:  domain.RunStatusSuccess,
		Message: fmt.Sprintf("summarized %d news items for %d companies", len(results), len(targets)),
		Stats:   stats,
		Results: results,
	}
}

func (p *Pipeline) targets(companies []string) ([]string, error) {
	out := make([]string, 0, len(companies))
	for _, company := range companies {
		if name := strings.TrimSpace(company); name != "" {
			out = append(out, name)
		}
	}
	if len(out) > 0 {
		return out, nil
	}
	if p.registry == nil {
		return nil, errors.New("no companies requested and no registry configured")
	}
	out = append(out, p.registry.Names()...)
	if len(out) == 0 {
		return nil, errors.New("company registry is empty")
	}
	return out, nil
}

// collect fetches every company concurrently, keeping company order.
func (p *Pipeline) collect(ctx context.Context, companies []string) []domain.RawNewsItem {
	perCompany := make([][]domain.RawNewsItem, len(companies))

	var g errgroup.Group
	for i, company := range companies {
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					p.logger.Error("collect_task_panic", "company", company, "panic", fmt.Sprint(rec))
					perCompany[i] = nil
				}
			}()
			perCompany[i] = p.source.FetchCompanyNews(ctx, company, p.cfg.NewsPerCompany)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, items := range perCompany {
		total += len(items)
	}
	out := make([]domain.RawNewsItem, 0, total)
	for i, items := range perCompany {
		p.logger.Debug("company_collected", "company", companies[i], "items", len(items))
		out = append(out, items...)
	}
	return out
}

func (p *Pipeline) stopEarly(stage domain.PipelineStage, stats domain.PipelineRunStats, message string) domain.PipelineRun {
	p.logger.Info("pipeline_stage_empty", "stage", stage, "message", message)
	return domain.PipelineRun{
		Status:  domain.RunStatusSuccess,
		Message: message,
		Stats:   stats,
		EmptyAt: stage,
		Results: []domain.SummaryResult{},
	}
}

func errorRun(err error) domain.PipelineRun {
	return domain.PipelineRun{
		Status:  domain.RunStatusError,
		Message: fmt.Sprintf("pipeline failed: %v", err),
		Stats:   domain.PipelineRunStats{Companies: []string{}},
		Results: []domain.SummaryResult{},
	}
}
