package inference

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
	"github.com/kirillkom/weekly-issue/internal/infrastructure/resilience"
)

const DefaultSummarizerTimeout = 15 * time.Second

type SummarizerOptions struct {
	Timeout  time.Duration
	Executor *resilience.Executor
	Logger   *slog.Logger
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	Now func() time.Time
}

type summarizeRequest struct {
	News newsPayload `json:"news"`
}

type newsPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Summarizer calls the model once per item, in order.
type Summarizer struct {
	endpoint endpoint
	logger   *slog.Logger
	now      func() time.Time
}

func NewSummarizer(url string, opts SummarizerOptions) *Summarizer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultSummarizerTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		endpoint: newEndpoint("summarizer", url, opts.Timeout, opts.HTTPClient, opts.Executor),
		logger:   logger.With("component", "summarizer"),
		now:      opts.Now,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, items []domain.ClassifiedItem) []domain.SummaryResult {
	out := make([]domain.SummaryResult, 0, len(items))
	fallbacks := 0
	for _, item := range items {
		result := s.summarizeOne(ctx, item)
		if result.SummaryOrigin.IsFallback() {
			fallbacks++
		}
		out = append(out, result)
	}
	s.logger.Info("summarizer_done", "items", len(items), "fallbacks", fallbacks)
	return out
}

func (s *Summarizer) summarizeOne(ctx context.Context, item domain.ClassifiedItem) domain.SummaryResult {
	summary, origin := s.requestSummary(ctx, item)
	return domain.SummaryResult{
		ID:              uuid.NewString(),
		Company:         item.Company,
		Summary:         summary,
		SummaryOrigin:   origin,
		OriginalTitle:   item.Title,
		Description:     item.Description,
		Label:           item.ClassificationLabel,
		Confidence:      item.ClassificationConfidence,
		MatchedKeywords: append([]string(nil), item.MatchedKeywords...),
		NewsURL:         item.Link,
		PublishedDate:   NormalizePublishedDate(item.PublishedRaw, s.now()),
		Category:        domain.DefaultCategory,
		Sentiment:       domain.DefaultSentiment,
	}
}

func (s *Summarizer) requestSummary(ctx context.Context, item domain.ClassifiedItem) (string, domain.SummaryOrigin) {
	var resp summarizeResponse
	req := summarizeRequest{News: newsPayload{Title: item.Title, Description: item.Description}}
	if err := s.endpoint.call(ctx, "summarizer.summarize", req, &resp); err != nil {
		origin := summaryOriginFor(err)
		s.logger.Warn("summarizer_fallback", "company", item.Company, "origin", origin, "error", err)
		return FallbackSummary(item.Company, item.Title, item.Description), origin
	}

	text := strings.TrimSpace(resp.Summary)
	if text == "" {
		s.logger.Warn("summarizer_empty_summary", "company", item.Company)
		return FallbackSummary(item.Company, item.Title, item.Description), domain.SummaryOriginFallbackEmpty
	}
	return text, domain.SummaryOriginModel
}
